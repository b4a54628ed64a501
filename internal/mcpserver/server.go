// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes specmend capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specmend/specmend"
	"github.com/specmend/specmend/proposer"
	"github.com/specmend/specmend/repair"
	"github.com/specmend/specmend/rules"
	"github.com/specmend/specmend/validator"
)

const serverInstructions = `specmend MCP server — validates, normalizes, repairs, and extracts OpenAPI specs for gateway publication.

Configuration: All defaults are configurable via SPECMEND_* environment variables set in your MCP client config. The Go MCP SDK does not support initializationOptions; use env vars instead.

Key settings:
- SPECMEND_RULES_FILE — gateway constraint file layered over the built-in defaults
- SPECMEND_VALIDATE_NO_WARNINGS (default: false) — suppress warnings by default
- SPECMEND_MAX_ROUNDS (default: 10) — repair loop round cap
- SPECMEND_PROPOSAL_TIMEOUT (default: 30s) — per-proposal model deadline
- SPECMEND_GEMINI_API_KEY — API key for the repair proposer (falls back to GEMINI_API_KEY)
- SPECMEND_GEMINI_MODEL — Gemini model for the repair proposer

Sessions: the repair tool opens a session holding the repaired document and its report. Use session_report to re-read a session and session_close to drop it.`

// sessions holds repair sessions for the lifetime of the server process.
var sessions = repair.NewStore()

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "specmend", Version: specmend.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate an OpenAPI document against OpenAPI 3.0 structure and the gateway constraint table. OAS 2.0 input is normalized to 3.0 first. Returns violations in deterministic order with rule ids, JSON-path-style locations, and line numbers. Warning suppression defaults to SPECMEND_VALIDATE_NO_WARNINGS.",
	}, handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert",
		Description: "Load an OpenAPI document and return it normalized to OpenAPI 3.0.3 in the requested output format (yaml or json). OAS 2.0 constructs (definitions, body/formData parameters, produces/consumes, securityDefinitions) are rewritten to their 3.0 equivalents, preserving key order.",
	}, handleConvert)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract",
		Description: "Extract a self-contained sub-document containing only the named operations and the transitive closure of everything they reference. Fails when an operation id does not exist in the source.",
	}, handleExtract)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "repair",
		Description: "Run the iterative repair loop on an OpenAPI document: validate, ask the model for edits, apply them atomically, revalidate. Stops on a clean document, after SPECMEND_MAX_ROUNDS rounds, or after two rounds without progress. Requires a Gemini API key unless the document is already clean. Opens a session holding the result for follow-up calls.",
	}, handleRepair)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "session_report",
		Description: "Return the current document and repair report of an open session.",
	}, handleSessionReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "session_close",
		Description: "Close an open repair session and discard its state.",
	}, handleSessionClose)
}

// loadedRules caches the constraint table resolved from SPECMEND_RULES_FILE.
var (
	rulesOnce  sync.Once
	rulesTable *rules.Table
	rulesErr   error
)

// activeRules resolves the gateway constraint table once per process.
func activeRules() (*rules.Table, error) {
	rulesOnce.Do(func() {
		if cfg.RulesFile == "" {
			rulesTable = rules.Default()
			return
		}
		rulesTable, rulesErr = rules.LoadFile(cfg.RulesFile)
	})
	return rulesTable, rulesErr
}

// newValidator builds a validator from the active rule table.
func newValidator(noWarnings *bool) (*validator.Validator, error) {
	table, err := activeRules()
	if err != nil {
		return nil, err
	}
	v := validator.New(table)
	suppress := cfg.ValidateNoWarnings
	if noWarnings != nil {
		suppress = *noWarnings
	}
	v.IncludeWarnings = !suppress
	return v, nil
}

// newProposer builds the Gemini-backed proposer for the repair tool.
func newProposer(ctx context.Context) (repair.Proposer, error) {
	var opts []proposer.GeminiOption
	if cfg.GeminiModel != "" {
		opts = append(opts, proposer.WithModel(cfg.GeminiModel))
	}
	invoker, err := proposer.NewGeminiInvoker(ctx, cfg.GeminiAPIKey, opts...)
	if err != nil {
		return nil, err
	}
	return proposer.New(invoker), nil
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// Package specmend repairs OpenAPI specification documents for API gateway
// compatibility.
//
// specmend takes an arbitrary OpenAPI 2.0 (Swagger) or 3.x document, normalizes
// it to OpenAPI 3.0, validates it against structural and gateway-specific
// constraints, and iteratively applies model-proposed edits until the document
// validates cleanly or a retry budget is exhausted. A standalone extractor
// produces minimal self-contained documents scoped to a set of operations.
//
// # Overview
//
// The library consists of six primary packages:
//
//   - document: Load, normalize, and manipulate specification documents as
//     ordered node trees with source line/column provenance
//   - validator: Validate documents against OpenAPI 3.0 structure and a
//     configurable gateway rule table, producing deterministic violation lists
//   - rules: The gateway constraint table, loaded as configuration data
//   - proposer: Turn violations into candidate edits via an external
//     model-invocation collaborator
//   - repair: The repair loop controller and repair session lifecycle
//   - extractor: Extract minimal sub-schema documents for selected operations
//
// # Quick Start
//
// Load and validate a specification:
//
//	import (
//	    "github.com/specmend/specmend/document"
//	    "github.com/specmend/specmend/rules"
//	    "github.com/specmend/specmend/validator"
//	)
//
//	data, _ := os.ReadFile("swagger.yaml")
//	doc, err := document.Load(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v := validator.New(rules.Default())
//	violations := v.Validate(doc)
//	for _, viol := range violations {
//	    fmt.Println(viol.String())
//	}
//
// Run the repair loop with a model-backed proposer:
//
//	import (
//	    "github.com/specmend/specmend/proposer"
//	    "github.com/specmend/specmend/repair"
//	)
//
//	invoker, err := proposer.NewGeminiInvoker(ctx, os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl := repair.New(v, proposer.New(invoker))
//	repaired, report, err := ctrl.Run(ctx, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("outcome: %s after %d rounds\n", report.Outcome, report.Rounds)
//	out, _ := repaired.Marshal(document.FormatYAML)
//
// Extract a sub-schema for selected operations:
//
//	import "github.com/specmend/specmend/extractor"
//
//	sub, err := extractor.Extract(doc, extractor.Request{
//	    OperationIDs: []string{"listPets", "getPetById"},
//	})
//
// # Command-Line Interface
//
// In addition to the library packages, specmend provides a command-line
// interface:
//
//	# Validate a spec against gateway rules
//	specmend validate openapi.yaml
//
//	# Repair a spec (requires GEMINI_API_KEY)
//	specmend repair -o fixed.yaml swagger.yaml
//
//	# Extract a sub-schema for two operations
//	specmend extract -ops listPets,getPetById -o subset.yaml openapi.yaml
//
//	# Normalize a Swagger 2.0 document to OpenAPI 3.0
//	specmend convert -o openapi.yaml swagger.yaml
//
//	# Run as an MCP server over stdio
//	specmend mcp
//
// Install the CLI:
//
//	go install github.com/specmend/specmend/cmd/specmend@latest
//
// # Concurrency
//
// A repair session is owned by a single goroutine: all document mutation is
// serialized through the loop controller. Independent sessions share no
// mutable state; rule tables are immutable after initialization and safe to
// share. The model-invocation collaborator is the only blocking call in the
// loop and is always invoked with a cancellable context.
//
// # Error Handling
//
// The specerrors package defines the error taxonomy. Load-time failures
// (ParseError, UnsupportedVersionError) are terminal. ProposalRejected and
// apply failures are recoverable: the loop controller absorbs them into its
// no-progress counter and never propagates them mid-loop. Terminal loop
// outcomes are always paired with a repair.Report.
package specmend

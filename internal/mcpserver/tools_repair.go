package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specmend/specmend/repair"
	"github.com/specmend/specmend/validator"
)

type repairInput struct {
	Spec       specInput `json:"spec"                 jsonschema:"The OpenAPI document to repair"`
	MaxRounds  *int      `json:"max_rounds,omitempty" jsonschema:"Override the repair round cap"`
	NoWarnings *bool     `json:"no_warnings,omitempty" jsonschema:"Suppress warnings during validation"`
	Format     string    `json:"format,omitempty"     jsonschema:"Output format: yaml or json (default: same as input)"`
}

type repairOutput struct {
	SessionID    string         `json:"session_id"`
	Outcome      string         `json:"outcome"`
	Rounds       int            `json:"rounds"`
	EditsApplied int            `json:"edits_applied"`
	Violations   []violationOut `json:"violations,omitempty"`
	Document     string         `json:"document"`
}

func handleRepair(ctx context.Context, _ *mcp.CallToolRequest, input repairInput) (*mcp.CallToolResult, repairOutput, error) {
	doc, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), repairOutput{}, nil
	}

	v, err := newValidator(input.NoWarnings)
	if err != nil {
		return errResult(err), repairOutput{}, nil
	}

	// Only stand up the model client when the document actually needs it.
	var prop repair.Proposer
	if validator.ErrorCount(v.Validate(doc)) > 0 {
		prop, err = newProposer(ctx)
		if err != nil {
			return errResult(err), repairOutput{}, nil
		}
	}

	maxRounds := cfg.MaxRounds
	if input.MaxRounds != nil && *input.MaxRounds > 0 {
		maxRounds = *input.MaxRounds
	}
	ctrl := repair.New(v, prop,
		repair.WithMaxRounds(maxRounds),
		repair.WithProposalTimeout(cfg.ProposalTimeout),
	)

	final, report, err := ctrl.Run(ctx, doc)
	if err != nil {
		return errResult(err), repairOutput{}, nil
	}

	format, err := outputFormat(input.Format, final)
	if err != nil {
		return errResult(err), repairOutput{}, nil
	}
	data, err := final.Marshal(format)
	if err != nil {
		return errResult(err), repairOutput{}, nil
	}

	session := sessions.Open(final)
	sessions.Update(session.ID, final, report)

	return nil, repairOutput{
		SessionID:    session.ID,
		Outcome:      string(report.Outcome),
		Rounds:       report.Rounds,
		EditsApplied: report.EditsApplied,
		Violations:   violationsOut(report.Violations),
		Document:     string(data),
	}, nil
}

type sessionReportInput struct {
	SessionID string `json:"session_id"       jsonschema:"The session to report on"`
	Format    string `json:"format,omitempty" jsonschema:"Output format: yaml or json (default: same as input)"`
}

func handleSessionReport(_ context.Context, _ *mcp.CallToolRequest, input sessionReportInput) (*mcp.CallToolResult, repairOutput, error) {
	session, ok := sessions.Get(input.SessionID)
	if !ok {
		return errResult(errUnknownSession(input.SessionID)), repairOutput{}, nil
	}

	format, err := outputFormat(input.Format, session.Doc)
	if err != nil {
		return errResult(err), repairOutput{}, nil
	}
	data, err := session.Doc.Marshal(format)
	if err != nil {
		return errResult(err), repairOutput{}, nil
	}

	output := repairOutput{
		SessionID: session.ID,
		Document:  string(data),
	}
	if session.Report != nil {
		output.Outcome = string(session.Report.Outcome)
		output.Rounds = session.Report.Rounds
		output.EditsApplied = session.Report.EditsApplied
		output.Violations = violationsOut(session.Report.Violations)
	}
	return nil, output, nil
}

type sessionCloseInput struct {
	SessionID string `json:"session_id" jsonschema:"The session to close"`
}

type sessionCloseOutput struct {
	Closed bool `json:"closed"`
}

func handleSessionClose(_ context.Context, _ *mcp.CallToolRequest, input sessionCloseInput) (*mcp.CallToolResult, sessionCloseOutput, error) {
	if !sessions.Close(input.SessionID) {
		return errResult(errUnknownSession(input.SessionID)), sessionCloseOutput{}, nil
	}
	return nil, sessionCloseOutput{Closed: true}, nil
}

func errUnknownSession(id string) error {
	return &unknownSessionError{id: id}
}

type unknownSessionError struct{ id string }

func (e *unknownSessionError) Error() string {
	return "unknown session id: " + e.id
}

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/validator"
)

type validateInput struct {
	Spec       specInput `json:"spec"                  jsonschema:"The OpenAPI document to validate"`
	NoWarnings *bool     `json:"no_warnings,omitempty" jsonschema:"Suppress warnings from output"`
}

type violationOut struct {
	Path     string `json:"path"`
	RuleID   string `json:"rule_id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Line     int    `json:"line,omitempty"`
}

type noteOut struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type validateOutput struct {
	Valid         bool           `json:"valid"`
	Version       string         `json:"version"`
	SourceVersion string         `json:"source_version,omitempty"`
	ErrorCount    int            `json:"error_count"`
	WarningCount  int            `json:"warning_count"`
	Violations    []violationOut `json:"violations,omitempty"`
	Notes         []noteOut      `json:"notes,omitempty"`
}

func handleValidate(_ context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	doc, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	v, err := newValidator(input.NoWarnings)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	violations := v.Validate(doc)

	output := validateOutput{
		Valid:         validator.ErrorCount(violations) == 0,
		Version:       doc.Version(),
		SourceVersion: doc.SourceVersion(),
		ErrorCount:    validator.ErrorCount(violations),
		WarningCount:  validator.WarningCount(violations),
		Violations:    violationsOut(violations),
		Notes:         notesOut(doc),
	}
	return nil, output, nil
}

func violationsOut(violations []validator.Violation) []violationOut {
	out := makeSlice[violationOut](len(violations))
	for _, viol := range violations {
		out = append(out, violationOut{
			Path:     viol.Path,
			RuleID:   viol.RuleID,
			Message:  viol.Message,
			Severity: viol.Severity.String(),
			Line:     viol.Line,
		})
	}
	return out
}

func notesOut(doc *document.Document) []noteOut {
	notes := doc.Notes()
	out := makeSlice[noteOut](len(notes))
	for _, note := range notes {
		out = append(out, noteOut{Path: note.Path, Message: note.Message})
	}
	return out
}

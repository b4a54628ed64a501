package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specmend/specmend/document"
)

type convertInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The OpenAPI document to normalize"`
	Format string    `json:"format,omitempty" jsonschema:"Output format: yaml or json (default: same as input)"`
}

type convertOutput struct {
	Version       string    `json:"version"`
	SourceVersion string    `json:"source_version,omitempty"`
	Document      string    `json:"document"`
	Notes         []noteOut `json:"notes,omitempty"`
}

func handleConvert(_ context.Context, _ *mcp.CallToolRequest, input convertInput) (*mcp.CallToolResult, convertOutput, error) {
	doc, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), convertOutput{}, nil
	}

	format, err := outputFormat(input.Format, doc)
	if err != nil {
		return errResult(err), convertOutput{}, nil
	}
	data, err := doc.Marshal(format)
	if err != nil {
		return errResult(err), convertOutput{}, nil
	}

	return nil, convertOutput{
		Version:       doc.Version(),
		SourceVersion: doc.SourceVersion(),
		Document:      string(data),
		Notes:         notesOut(doc),
	}, nil
}

// outputFormat maps a tool format string to a document format, defaulting
// to the document's own source format.
func outputFormat(name string, doc *document.Document) (document.Format, error) {
	switch name {
	case "":
		return doc.Format(), nil
	case "yaml":
		return document.FormatYAML, nil
	case "json":
		return document.FormatJSON, nil
	default:
		return document.FormatUnknown, fmt.Errorf("invalid format %q: must be yaml or json", name)
	}
}

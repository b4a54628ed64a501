package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specmend/specmend/extractor"
)

type extractInput struct {
	Spec         specInput `json:"spec"             jsonschema:"The OpenAPI document to extract from"`
	OperationIDs []string  `json:"operation_ids"    jsonschema:"The operationIds to keep"`
	Format       string    `json:"format,omitempty" jsonschema:"Output format: yaml or json (default: same as input)"`
}

type extractOutput struct {
	Document   string `json:"document"`
	Operations int    `json:"operations"`
}

func handleExtract(_ context.Context, _ *mcp.CallToolRequest, input extractInput) (*mcp.CallToolResult, extractOutput, error) {
	doc, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), extractOutput{}, nil
	}

	sub, err := extractor.Extract(doc, extractor.Request{OperationIDs: input.OperationIDs})
	if err != nil {
		return errResult(err), extractOutput{}, nil
	}

	format, err := outputFormat(input.Format, sub)
	if err != nil {
		return errResult(err), extractOutput{}, nil
	}
	data, err := sub.Marshal(format)
	if err != nil {
		return errResult(err), extractOutput{}, nil
	}

	return nil, extractOutput{
		Document:   string(data),
		Operations: len(input.OperationIDs),
	}, nil
}

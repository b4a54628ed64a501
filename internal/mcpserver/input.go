package mcpserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specmend/specmend/document"
)

// specInput represents the two ways a spec can be provided to a tool.
// Exactly one of File or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a spec file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline spec content (JSON or YAML)"`
}

// resolve loads the spec into a document, running version detection and
// OAS 2.0 normalization along the way.
func (s specInput) resolve() (*document.Document, error) {
	switch {
	case s.File != "" && s.Content != "":
		return nil, errors.New("provide either file or content, not both")
	case s.File != "":
		path := filepath.Clean(s.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return document.Load(data)
	case s.Content != "":
		return document.Load([]byte(s.Content))
	default:
		return nil, errors.New("provide a spec via file or content")
	}
}

// Package commands provides CLI command handlers for specmend.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/internal/cliutil"
	"github.com/specmend/specmend/rules"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// Writef writes formatted output to the writer.
func Writef(w io.Writer, format string, args ...any) {
	cliutil.Writef(w, format, args...)
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured outputs data in the specified format (json or yaml) to stdout.
// Returns an error if marshaling fails.
func OutputStructured(data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	fmt.Println(string(bytes))
	return nil
}

// ReadSpec loads a specification from a file path or stdin ("-").
func ReadSpec(specPath string) (*document.Document, error) {
	var data []byte
	var err error
	if specPath == StdinFilePath {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filepath.Clean(specPath))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", specPath, err)
		}
	}
	return document.Load(data)
}

// LoadRulesTable resolves the gateway constraint table: the built-in
// defaults, or a file layered over them when rulesPath is set.
func LoadRulesTable(rulesPath string) (*rules.Table, error) {
	if rulesPath == "" {
		return rules.Default(), nil
	}
	return rules.LoadFile(rulesPath)
}

// RejectSymlinkOutput checks if the output path is a symlink and returns an error if so.
// This prevents symlink attacks where a symlink could redirect output to an unintended location.
func RejectSymlinkOutput(cleanedPath string) error {
	info, err := os.Lstat(cleanedPath)
	if os.IsNotExist(err) {
		// File doesn't exist yet, safe to write.
		return nil
	}
	if err != nil {
		return fmt.Errorf("commands: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("commands: refusing to write to symlink: %s", cleanedPath)
	}
	return nil
}

// WriteDocument writes a marshaled document to the output path, or stdout
// when the path is empty.
func WriteDocument(data []byte, outputPath string) error {
	if outputPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	cleaned := filepath.Clean(outputPath)
	if err := RejectSymlinkOutput(cleaned); err != nil {
		return err
	}
	if err := os.WriteFile(cleaned, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", cleaned, err)
	}
	return nil
}

// DocumentFormat maps a -format flag value to the marshal format,
// defaulting to the document's own source format.
func DocumentFormat(name string, doc *document.Document) (document.Format, error) {
	switch name {
	case "":
		return doc.Format(), nil
	case FormatYAML:
		return document.FormatYAML, nil
	case FormatJSON:
		return document.FormatJSON, nil
	default:
		return document.FormatUnknown, fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", name, FormatYAML, FormatJSON)
	}
}

// FormatSpecPath returns a display-friendly path for the specification.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

package document

import "bytes"

// Format identifies the source encoding of a document.
type Format int

const (
	// FormatUnknown means the format could not be determined
	FormatUnknown Format = iota
	// FormatJSON is a JSON-encoded document
	FormatJSON
	// FormatYAML is a YAML-encoded document
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat attempts to detect the encoding from the content bytes.
// JSON documents start with '{' or '[' after leading whitespace; anything
// else is treated as YAML.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	switch trimmed[0] {
	case '{', '[':
		return FormatJSON
	}
	return FormatYAML
}

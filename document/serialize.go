package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Marshal serializes the document in the given format. FormatUnknown uses
// the document's recorded source format.
func (d *Document) Marshal(f Format) ([]byte, error) {
	if f == FormatUnknown {
		f = d.format
	}
	if f == FormatJSON {
		return d.MarshalJSON()
	}
	return d.MarshalYAML()
}

// MarshalYAML serializes the document as YAML, preserving key order.
func (d *Document) MarshalYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("document: marshaling yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("document: marshaling yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalJSON serializes the document as indented JSON, preserving key
// order. encoding/json cannot be used directly for the tree because Go maps
// do not preserve order, so the encoder walks the nodes itself.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSONNode(&buf, d.root, 0); err != nil {
		return nil, fmt.Errorf("document: marshaling json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

const jsonIndent = "  "

// encodeJSONNode writes one node as JSON at the given indent depth.
func encodeJSONNode(buf *bytes.Buffer, n *yaml.Node, depth int) error {
	n = resolveAlias(n)
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteString(",\n")
			}
			buf.WriteString(strings.Repeat(jsonIndent, depth+1))
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteString(": ")
			if err := encodeJSONNode(buf, n.Content[i+1], depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(jsonIndent, depth))
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteString(",\n")
			}
			buf.WriteString(strings.Repeat(jsonIndent, depth+1))
			if err := encodeJSONNode(buf, item, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(jsonIndent, depth))
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		return encodeJSONScalar(buf, n)
	default:
		return fmt.Errorf("unsupported node kind %d", n.Kind)
	}
}

// encodeJSONScalar writes a scalar node using its resolved yaml tag to pick
// the JSON representation.
func encodeJSONScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Tag {
	case "!!null":
		buf.WriteString("null")
		return nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			break
		}
		buf.WriteString(strconv.FormatBool(b))
		return nil
	case "!!int":
		if _, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
			buf.WriteString(n.Value)
			return nil
		}
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			out, err := json.Marshal(f)
			if err != nil {
				return err
			}
			buf.Write(out)
			return nil
		}
	}
	// Strings and anything that failed a typed parse.
	out, err := json.Marshal(n.Value)
	if err != nil {
		return err
	}
	buf.Write(out)
	return nil
}

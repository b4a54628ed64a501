package document

import (
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Path addresses a node in the document tree as a sequence of map keys and
// sequence indices (indices in decimal form). An empty Path addresses the
// document root.
type Path []string

// String returns the display form of the path, with segments joined by ".".
// Example: "paths./pets.get.operationId".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	return strings.Join(p, ".")
}

// Parent returns the path without its final segment. The parent of an empty
// path is an empty path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Leaf returns the final segment, or "" for an empty path.
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new path with segment appended. The receiver is not
// modified and the result does not alias its backing array.
func (p Path) Child(segment string) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = segment
	return child
}

// MapGet returns the value node for key in a mapping node.
func MapGet(n *yaml.Node, key string) (*yaml.Node, bool) {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1], true
		}
	}
	return nil, false
}

// MapKeyNode returns the key node for key in a mapping node. Useful when a
// diagnostic should point at the key rather than its value.
func MapKeyNode(n *yaml.Node, key string) (*yaml.Node, bool) {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i], true
		}
	}
	return nil, false
}

// MapSet sets key to value in a mapping node, replacing an existing entry or
// appending a new one at the end (source order of existing keys is kept).
func MapSet(n *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = value
			return
		}
	}
	n.Content = append(n.Content, ScalarNode(key), value)
}

// MapDelete removes key from a mapping node. Returns false if absent.
func MapDelete(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content = append(n.Content[:i], n.Content[i+2:]...)
			return true
		}
	}
	return false
}

// MapEntry is a single key/value pair of a mapping node.
type MapEntry struct {
	// Key is the scalar key value
	Key string
	// KeyNode is the key's node (for line/column provenance)
	KeyNode *yaml.Node
	// Value is the entry's value node
	Value *yaml.Node
}

// MapEntries returns the entries of a mapping node in source order.
// Returns nil for non-mapping nodes.
func MapEntries(n *yaml.Node) []MapEntry {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	entries := make([]MapEntry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		entries = append(entries, MapEntry{
			Key:     n.Content[i].Value,
			KeyNode: n.Content[i],
			Value:   n.Content[i+1],
		})
	}
	return entries
}

// ScalarNode returns a new string scalar node.
func ScalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// MappingNode returns a new empty mapping node.
func MappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// SequenceNode returns a new empty sequence node.
func SequenceNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

// BoolNode returns a new boolean scalar node.
func BoolNode(value bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)}
}

// NodeFromValue converts an arbitrary Go value (typically the result of
// decoding model-proposed JSON) into a node.
func NodeFromValue(v any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding value as node: %w", err)
	}
	return &n, nil
}

// ValueOf decodes a node back into a generic Go value.
func ValueOf(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding node value: %w", err)
	}
	return v, nil
}

// CopyNode returns a deep copy of a node tree. Line and column information
// is preserved so provenance survives document copies.
func CopyNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	out := &yaml.Node{
		Kind:   n.Kind,
		Style:  n.Style,
		Tag:    n.Tag,
		Value:  n.Value,
		Anchor: n.Anchor,
		Line:   n.Line,
		Column: n.Column,
	}
	if n.Alias != nil {
		out.Alias = CopyNode(n.Alias)
	}
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			out.Content[i] = CopyNode(child)
		}
	}
	return out
}

// resolveAlias follows alias nodes to their anchor target.
func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// lookupChild resolves a single path segment against a node.
func lookupChild(n *yaml.Node, segment string) (*yaml.Node, bool) {
	n = resolveAlias(n)
	if n == nil {
		return nil, false
	}
	switch n.Kind {
	case yaml.MappingNode:
		return MapGet(n, segment)
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(n.Content) {
			return nil, false
		}
		return n.Content[idx], true
	default:
		return nil, false
	}
}

package document

import (
	"strconv"

	"github.com/specmend/specmend/internal/severity"
	"github.com/specmend/specmend/specerrors"
	"go.yaml.in/yaml/v4"
)

// Document is an ordered tree of nodes representing an OpenAPI 3.0
// specification. Instances are produced by Load (which normalizes 2.0 input)
// and by DeepCopy; the zero value is not usable.
//
// A Document is not safe for concurrent mutation. The repair loop controller
// serializes all mutation within a session.
type Document struct {
	root          *yaml.Node
	format        Format
	version       string
	sourceVersion string
	notes         []Note
}

// Note records an informational or lossy normalization step taken while
// loading the document.
type Note struct {
	// Path is the display-form path the note relates to
	Path string
	// Message describes the normalization step
	Message string
	// Severity is the note's severity (info for choices, warning for loss)
	Severity severity.Severity
}

// Root returns the root mapping node of the document tree.
func (d *Document) Root() *yaml.Node {
	return d.root
}

// Format returns the detected source encoding.
func (d *Document) Format() Format {
	return d.format
}

// Version returns the effective OpenAPI version of the tree (always 3.x;
// 2.0 input is normalized on load).
func (d *Document) Version() string {
	return d.version
}

// SourceVersion returns the version declared by the original input
// ("2.0" for Swagger documents).
func (d *Document) SourceVersion() string {
	return d.sourceVersion
}

// Notes returns the normalization notes recorded during load, in the order
// they were produced.
func (d *Document) Notes() []Note {
	return d.notes
}

func (d *Document) addNote(path, message string, sev severity.Severity) {
	d.notes = append(d.notes, Note{Path: path, Message: message, Severity: sev})
}

// Lookup returns the node at path, resolving aliases along the way.
func (d *Document) Lookup(path Path) (*yaml.Node, bool) {
	n := d.root
	for _, segment := range path {
		child, ok := lookupChild(n, segment)
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// Has reports whether a node exists at path.
func (d *Document) Has(path Path) bool {
	_, ok := d.Lookup(path)
	return ok
}

// Set places value at path. For a mapping parent the final segment is
// replaced if present or appended if absent; for a sequence parent the
// final segment must be an existing index. The parent must exist.
func (d *Document) Set(path Path, value *yaml.Node) error {
	if len(path) == 0 {
		return &specerrors.ApplyError{Path: path.String(), Op: "set", Message: "cannot replace document root"}
	}
	parent, ok := d.Lookup(path.Parent())
	if !ok {
		return &specerrors.ApplyError{Path: path.String(), Op: "set", Message: "parent path not found"}
	}
	parent = resolveAlias(parent)
	switch parent.Kind {
	case yaml.MappingNode:
		MapSet(parent, path.Leaf(), value)
		return nil
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(path.Leaf())
		if err != nil || idx < 0 || idx >= len(parent.Content) {
			return &specerrors.ApplyError{Path: path.String(), Op: "set", Message: "sequence index out of range"}
		}
		parent.Content[idx] = value
		return nil
	default:
		return &specerrors.ApplyError{Path: path.String(), Op: "set", Message: "parent is not a mapping or sequence"}
	}
}

// Delete removes the node at path. The path must exist.
func (d *Document) Delete(path Path) error {
	if len(path) == 0 {
		return &specerrors.ApplyError{Path: path.String(), Op: "delete", Message: "cannot delete document root"}
	}
	parent, ok := d.Lookup(path.Parent())
	if !ok {
		return &specerrors.ApplyError{Path: path.String(), Op: "delete", Message: "parent path not found"}
	}
	parent = resolveAlias(parent)
	switch parent.Kind {
	case yaml.MappingNode:
		if !MapDelete(parent, path.Leaf()) {
			return &specerrors.ApplyError{Path: path.String(), Op: "delete", Message: "key not found"}
		}
		return nil
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(path.Leaf())
		if err != nil || idx < 0 || idx >= len(parent.Content) {
			return &specerrors.ApplyError{Path: path.String(), Op: "delete", Message: "sequence index out of range"}
		}
		parent.Content = append(parent.Content[:idx], parent.Content[idx+1:]...)
		return nil
	default:
		return &specerrors.ApplyError{Path: path.String(), Op: "delete", Message: "parent is not a mapping or sequence"}
	}
}

// Insert adds value at path. For a mapping parent the final segment must not
// already exist; for a sequence parent the final segment may be any index
// from 0 through the current length (elements shift right).
func (d *Document) Insert(path Path, value *yaml.Node) error {
	if len(path) == 0 {
		return &specerrors.ApplyError{Path: path.String(), Op: "insert", Message: "cannot insert at document root"}
	}
	parent, ok := d.Lookup(path.Parent())
	if !ok {
		return &specerrors.ApplyError{Path: path.String(), Op: "insert", Message: "parent path not found"}
	}
	parent = resolveAlias(parent)
	switch parent.Kind {
	case yaml.MappingNode:
		if _, exists := MapGet(parent, path.Leaf()); exists {
			return &specerrors.ApplyError{Path: path.String(), Op: "insert", Message: "key already exists"}
		}
		parent.Content = append(parent.Content, ScalarNode(path.Leaf()), value)
		return nil
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(path.Leaf())
		if err != nil || idx < 0 || idx > len(parent.Content) {
			return &specerrors.ApplyError{Path: path.String(), Op: "insert", Message: "sequence index out of range"}
		}
		parent.Content = append(parent.Content, nil)
		copy(parent.Content[idx+1:], parent.Content[idx:])
		parent.Content[idx] = value
		return nil
	default:
		return &specerrors.ApplyError{Path: path.String(), Op: "insert", Message: "parent is not a mapping or sequence"}
	}
}

// DeepCopy returns an independent copy of the document. No nodes are shared
// with the receiver.
func (d *Document) DeepCopy() *Document {
	return &Document{
		root:          CopyNode(d.root),
		format:        d.format,
		version:       d.version,
		sourceVersion: d.sourceVersion,
		notes:         append([]Note(nil), d.notes...),
	}
}

// NewFromRoot wraps an existing mapping node as a Document. Used by the
// extractor to build derived documents; callers own the node tree.
func NewFromRoot(root *yaml.Node, format Format, version string) *Document {
	return &Document{root: root, format: format, version: version, sourceVersion: version}
}

package repair

import (
	"fmt"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/specerrors"
)

// EditOp identifies the kind of mutation an Edit performs.
type EditOp string

const (
	// OpSet replaces the node at the path, or creates the leaf when its
	// parent exists.
	OpSet EditOp = "set"
	// OpDelete removes the node at the path.
	OpDelete EditOp = "delete"
	// OpInsert adds a new map key or splices a sequence element.
	OpInsert EditOp = "insert"
)

// Edit is one proposed mutation of a document node.
type Edit struct {
	// Path addresses the node to mutate, segment by segment from the root.
	Path document.Path `json:"path"`
	// Op is the mutation kind.
	Op EditOp `json:"op"`
	// Value is the replacement or inserted value. Ignored for OpDelete.
	Value any `json:"value,omitempty"`
}

func (e Edit) String() string {
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

// applyEdit performs one edit against the document. Failures come back as
// *specerrors.ApplyError so the controller can discard the whole batch.
func applyEdit(doc *document.Document, edit Edit) error {
	switch edit.Op {
	case OpDelete:
		return doc.Delete(edit.Path)
	case OpSet, OpInsert:
		node, err := document.NodeFromValue(edit.Value)
		if err != nil {
			return &specerrors.ApplyError{
				Path:    edit.Path.String(),
				Op:      string(edit.Op),
				Message: fmt.Sprintf("value cannot be encoded: %v", err),
			}
		}
		if edit.Op == OpSet {
			return doc.Set(edit.Path, node)
		}
		return doc.Insert(edit.Path, node)
	default:
		return &specerrors.ApplyError{
			Path:    edit.Path.String(),
			Op:      string(edit.Op),
			Message: "unknown edit operation",
		}
	}
}

// applyBatch applies edits in order to a deep copy of doc. On success the
// copy is returned; on the first failure the copy is discarded and the
// apply error returned, leaving doc untouched.
func applyBatch(doc *document.Document, edits []Edit) (*document.Document, error) {
	working := doc.DeepCopy()
	for _, edit := range edits {
		if err := applyEdit(working, edit); err != nil {
			return nil, err
		}
	}
	return working, nil
}

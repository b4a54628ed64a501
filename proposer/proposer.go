package proposer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/repair"
	"github.com/specmend/specmend/specerrors"
	"github.com/specmend/specmend/validator"
)

// maxEdits caps how many edits a single proposal may carry. A plan larger
// than this is not a minimal repair and gets rejected wholesale.
const maxEdits = 64

// Invoker performs one model call and returns the raw response text.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, prompt string) (string, error)

func (f InvokerFunc) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Proposer asks an Invoker for repair edits and validates the response
// before handing it to the repair loop. Implements repair.Proposer.
type Proposer struct {
	invoker Invoker
	log     document.Logger
}

// Option configures a Proposer.
type Option func(*Proposer)

// WithLogger sets the proposer's logger.
func WithLogger(l document.Logger) Option {
	return func(p *Proposer) { p.log = l }
}

// New creates a Proposer around the given Invoker.
func New(invoker Invoker, opts ...Option) *Proposer {
	p := &Proposer{invoker: invoker, log: document.NopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ repair.Proposer = (*Proposer)(nil)

// rawEdit is the wire form of one edit in the model's response.
type rawEdit struct {
	Path  []string        `json:"path"`
	Op    string          `json:"op"`
	Value json.RawMessage `json:"value"`
}

// Propose renders the violations into a prompt, invokes the model, and
// parses the response into edits. Any deviation from the response
// contract returns a *specerrors.ProposalRejectedError; context errors
// from the invoker pass through untouched so the loop can distinguish
// cancellation from bad output.
func (p *Proposer) Propose(ctx context.Context, doc *document.Document, violations []validator.Violation) ([]repair.Edit, error) {
	prompt := buildPrompt(doc, violations)
	p.log.Debug("invoking model", "violations", len(violations), "prompt_bytes", len(prompt))

	response, err := p.invoker.Invoke(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &specerrors.ProposalRejectedError{Reason: "model invocation failed", Cause: err}
	}

	edits, err := parseResponse(response)
	if err != nil {
		return nil, err
	}
	if err := checkEdits(doc, edits); err != nil {
		return nil, err
	}
	p.log.Debug("proposal accepted", "edits", len(edits))
	return edits, nil
}

// parseResponse decodes the model output under the strict contract: a
// bare JSON array of edit objects, nothing else.
func parseResponse(response string) ([]repair.Edit, error) {
	decoder := json.NewDecoder(strings.NewReader(response))
	decoder.DisallowUnknownFields()

	var raw []rawEdit
	if err := decoder.Decode(&raw); err != nil {
		return nil, &specerrors.ProposalRejectedError{
			Reason: "response is not a JSON array of edits",
			Cause:  err,
		}
	}
	if decoder.More() {
		return nil, &specerrors.ProposalRejectedError{Reason: "response has trailing content after the edit array"}
	}
	if len(raw) > maxEdits {
		return nil, &specerrors.ProposalRejectedError{
			Reason: fmt.Sprintf("proposal has %d edits, limit is %d", len(raw), maxEdits),
		}
	}

	edits := make([]repair.Edit, 0, len(raw))
	for i, r := range raw {
		edit, err := convertEdit(i, r)
		if err != nil {
			return nil, err
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

// convertEdit validates one wire edit and converts it to a repair.Edit.
func convertEdit(index int, r rawEdit) (repair.Edit, error) {
	reject := func(reason string) (repair.Edit, error) {
		return repair.Edit{}, &specerrors.ProposalRejectedError{
			Reason: fmt.Sprintf("edit %d: %s", index, reason),
			Path:   document.Path(r.Path).String(),
		}
	}

	if len(r.Path) == 0 {
		return reject("path is empty")
	}
	for _, segment := range r.Path {
		if segment == "" {
			return reject("path has an empty segment")
		}
	}

	op := repair.EditOp(r.Op)
	switch op {
	case repair.OpSet, repair.OpInsert:
		if len(r.Value) == 0 {
			return reject(fmt.Sprintf("%s requires a value", r.Op))
		}
	case repair.OpDelete:
		if len(r.Value) != 0 {
			return reject("delete must not carry a value")
		}
	default:
		return reject(fmt.Sprintf("unknown op %q", r.Op))
	}

	edit := repair.Edit{Path: document.Path(r.Path), Op: op}
	if len(r.Value) > 0 {
		var value any
		if err := json.Unmarshal(r.Value, &value); err != nil {
			return reject("value is not valid JSON")
		}
		edit.Value = value
	}
	return edit, nil
}

// checkEdits verifies every edit targets a plausible location in the
// document before anything is applied: delete needs an existing node, set
// and insert need an existing parent.
func checkEdits(doc *document.Document, edits []repair.Edit) error {
	for i, edit := range edits {
		switch edit.Op {
		case repair.OpDelete:
			if !doc.Has(edit.Path) {
				return &specerrors.ProposalRejectedError{
					Reason: fmt.Sprintf("edit %d: delete target does not exist", i),
					Path:   edit.Path.String(),
				}
			}
		case repair.OpSet, repair.OpInsert:
			if parent := edit.Path.Parent(); len(parent) > 0 && !doc.Has(parent) {
				return &specerrors.ProposalRejectedError{
					Reason: fmt.Sprintf("edit %d: parent of %s target does not exist", i, edit.Op),
					Path:   edit.Path.String(),
				}
			}
		}
	}
	return nil
}

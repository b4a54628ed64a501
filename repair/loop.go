package repair

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/validator"
)

const (
	// DefaultMaxRounds caps how many proposal cycles a loop may run.
	DefaultMaxRounds = 10
	// DefaultProposalTimeout bounds a single proposer invocation.
	DefaultProposalTimeout = 30 * time.Second
	// maxNoProgress is the number of consecutive rounds without a reduced
	// error count before the loop gives up.
	maxNoProgress = 2
)

// Proposer produces candidate edits for a set of violations. The document
// passed in must be treated as read-only; implementations return edits
// and never mutate the tree directly.
type Proposer interface {
	Propose(ctx context.Context, doc *document.Document, violations []validator.Violation) ([]Edit, error)
}

// Controller runs the repair loop. The zero value is not usable; use New.
type Controller struct {
	validator       *validator.Validator
	proposer        Proposer
	maxRounds       int
	proposalTimeout time.Duration
	log             document.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMaxRounds overrides the round cap.
func WithMaxRounds(n int) ControllerOption {
	return func(c *Controller) { c.maxRounds = n }
}

// WithProposalTimeout overrides the per-proposal deadline.
func WithProposalTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.proposalTimeout = d }
}

// WithLogger sets the loop's logger.
func WithLogger(l document.Logger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

// New creates a Controller. A nil validator selects validator.New(nil).
func New(v *validator.Validator, p Proposer, opts ...ControllerOption) *Controller {
	if v == nil {
		v = validator.New(nil)
	}
	c := &Controller{
		validator:       v,
		proposer:        p,
		maxRounds:       DefaultMaxRounds,
		proposalTimeout: DefaultProposalTimeout,
		log:             document.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run repairs doc until it validates cleanly, the loop exhausts its
// budget, or ctx is cancelled. The returned document is always internally
// consistent: either the input document or one produced by a fully
// applied batch. The input document is never mutated.
func (c *Controller) Run(ctx context.Context, doc *document.Document) (*document.Document, *Report, error) {
	if doc == nil {
		return nil, nil, errors.New("repair: document is nil")
	}

	report := &Report{}
	current := doc

	c.log.Debug("repair loop starting", "state", StateValidating)
	violations := c.validator.Validate(current)
	if validator.ErrorCount(violations) == 0 {
		// Warnings alone do not open a repair loop.
		report.Outcome = OutcomeConverged
		report.Violations = violations
		c.log.Info("document already clean", "rounds", 0)
		return current, report, nil
	}

	if c.proposer == nil {
		return nil, nil, errors.New("repair: document has violations but no proposer is configured")
	}

	noProgress := 0
	for round := 1; round <= c.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return c.abort(current, report, violations)
		}

		rec := Round{Number: round, ViolationsBefore: len(violations)}
		c.log.Debug("requesting proposal", "state", StateProposing,
			"round", round, "violations", len(violations))

		edits, err := c.propose(ctx, current, violations)
		if err != nil {
			if ctx.Err() != nil {
				return c.abort(current, report, violations)
			}
			// Rejected or failed proposals burn a round without progress.
			rec.ViolationsAfter = rec.ViolationsBefore
			rec.Note = err.Error()
			report.History = append(report.History, rec)
			report.Rounds = round
			c.log.Warn("proposal failed", "round", round, "error", err)
			if noProgress++; noProgress >= maxNoProgress {
				break
			}
			continue
		}
		rec.EditsProposed = len(edits)

		c.log.Debug("applying batch", "state", StateApplying,
			"round", round, "edits", len(edits))
		next, err := applyBatch(current, edits)
		if err != nil {
			rec.ViolationsAfter = rec.ViolationsBefore
			rec.Note = err.Error()
			report.History = append(report.History, rec)
			report.Rounds = round
			c.log.Warn("batch discarded", "round", round, "error", err)
			if noProgress++; noProgress >= maxNoProgress {
				break
			}
			continue
		}

		nextViolations := c.validator.Validate(next)
		rec.ViolationsAfter = len(nextViolations)

		if validator.ErrorCount(nextViolations) < validator.ErrorCount(violations) {
			// Progress: keep the batch.
			rec.Applied = true
			rec.Edits = edits
			current = next
			violations = nextViolations
			noProgress = 0
			report.EditsApplied += len(edits)
		} else {
			// The batch applied cleanly but made things no better; discard
			// it so the document never drifts sideways.
			rec.ViolationsAfter = rec.ViolationsBefore
			rec.Note = fmt.Sprintf("batch of %d edits did not reduce violations", len(edits))
			noProgress++
		}
		report.History = append(report.History, rec)
		report.Rounds = round
		c.log.Info("round complete", "round", round,
			"applied", rec.Applied, "violations", len(violations))

		if validator.ErrorCount(violations) == 0 {
			report.Outcome = OutcomeConverged
			report.Violations = violations
			return current, report, nil
		}
		if noProgress >= maxNoProgress {
			break
		}
	}

	report.Outcome = OutcomeExhausted
	report.Violations = violations
	c.log.Info("repair loop exhausted", "rounds", report.Rounds,
		"violations", len(violations))
	return current, report, nil
}

// propose invokes the proposer under the configured deadline.
func (c *Controller) propose(ctx context.Context, doc *document.Document, violations []validator.Violation) ([]Edit, error) {
	proposeCtx, cancel := context.WithTimeout(ctx, c.proposalTimeout)
	defer cancel()
	return c.proposer.Propose(proposeCtx, doc, violations)
}

// abort finalizes the report after cancellation, preserving the last
// consistent document.
func (c *Controller) abort(current *document.Document, report *Report, violations []validator.Violation) (*document.Document, *Report, error) {
	report.Outcome = OutcomeAborted
	report.Violations = violations
	c.log.Info("repair loop aborted", "rounds", report.Rounds)
	return current, report, nil
}

package repair

import (
	"github.com/specmend/specmend/validator"
)

// Outcome is the terminal result of a repair loop.
type Outcome string

const (
	// OutcomeConverged means validation reported no error-severity
	// violations.
	OutcomeConverged Outcome = "converged"
	// OutcomeExhausted means the loop hit its round cap or stopped making
	// progress.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeAborted means the caller cancelled the loop.
	OutcomeAborted Outcome = "aborted"
)

// State labels a phase of the repair loop, used for logging and session
// introspection.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateProposing  State = "proposing"
	StateApplying   State = "applying"
)

// Round records what happened in one proposal/apply/revalidate cycle.
type Round struct {
	// Number is the 1-based round index.
	Number int `json:"number"`
	// ViolationsBefore counts violations entering the round.
	ViolationsBefore int `json:"violations_before"`
	// ViolationsAfter counts violations after the round's batch. Equal to
	// ViolationsBefore when the batch was discarded.
	ViolationsAfter int `json:"violations_after"`
	// EditsProposed counts edits in the accepted proposal, zero when the
	// proposal was rejected or the proposer failed.
	EditsProposed int `json:"edits_proposed"`
	// Applied reports whether the batch was kept.
	Applied bool `json:"applied"`
	// Edits holds the kept batch for audit and replay, nil when the
	// batch was rejected or discarded.
	Edits []Edit `json:"edits,omitempty"`
	// Note carries the rejection or apply-failure reason, if any.
	Note string `json:"note,omitempty"`
}

// Report summarizes a finished repair loop.
type Report struct {
	// Outcome is the terminal state of the loop.
	Outcome Outcome `json:"outcome"`
	// Rounds counts proposal cycles that ran.
	Rounds int `json:"rounds"`
	// EditsApplied counts edits across all kept batches.
	EditsApplied int `json:"edits_applied"`
	// Violations holds the remaining violations against the final
	// document, in validation order.
	Violations []validator.Violation `json:"violations"`
	// History records every round in order.
	History []Round `json:"history"`
}

// Clean reports whether the final document has no error-severity
// violations left. Remaining warnings do not make a document dirty.
func (r *Report) Clean() bool {
	return validator.ErrorCount(r.Violations) == 0
}

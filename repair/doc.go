// Package repair drives the iterative repair loop: validate a document,
// ask a proposer for edits, apply them atomically, and revalidate until
// the document is clean or the loop gives up.
//
// The Controller owns the loop policy: a hard round cap, a per-proposal
// timeout, and a no-progress cutoff. Proposals are applied as a batch on
// a deep copy of the working document, so a failed or unhelpful batch
// never leaves partial edits behind. Proposer failures of any kind count
// as rounds without progress rather than aborting the loop; only context
// cancellation aborts.
package repair

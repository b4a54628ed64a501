// Package proposer turns validation violations into candidate document
// edits by asking an external model for a structured repair plan.
//
// The model is an untrusted collaborator: its output is parsed strictly
// and checked against the document before any edit is handed to the
// repair loop. Anything malformed, out of contract, or aimed at a
// nonexistent location is rejected with a
// specerrors.ProposalRejectedError rather than partially honored.
//
// Proposer implements repair.Proposer on top of an Invoker, the narrow
// interface that performs the actual model call. GeminiInvoker is the
// production Invoker backed by the Gemini API; tests substitute their
// own.
package proposer

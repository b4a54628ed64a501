// Package specerrors provides structured error types for specmend.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between terminal failures
// (parse and version errors at load time, unknown operations at extraction
// time) and recoverable ones (rejected proposals and failed edit batches,
// which the repair loop absorbs into its no-progress counter).
package specerrors

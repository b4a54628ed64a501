package specerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates the input document could not be parsed.
	ErrParse = errors.New("parse error")

	// ErrUnsupportedVersion indicates the document declares a specification
	// version below 2.0 or carries no recognizable version marker.
	ErrUnsupportedVersion = errors.New("unsupported specification version")

	// ErrProposalRejected indicates the model collaborator returned a
	// malformed, off-schema, or nonexistent-path proposal.
	ErrProposalRejected = errors.New("proposal rejected")

	// ErrApply indicates an edit batch could not be applied to the document.
	ErrApply = errors.New("apply failure")

	// ErrUnknownOperation indicates a sub-schema request named an
	// operationId that is not present in the document.
	ErrUnknownOperation = errors.New("unknown operation id")
)

// ParseError represents a failure to parse an input document.
// This includes YAML/JSON deserialization errors and structural issues
// such as a non-mapping document root.
type ParseError struct {
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// UnsupportedVersionError represents a document whose declared version
// cannot be processed.
type UnsupportedVersionError struct {
	// Declared is the version string found in the document
	// (empty when the document has no version marker at all)
	Declared string
}

// Error returns a human-readable error message.
func (e *UnsupportedVersionError) Error() string {
	if e.Declared == "" {
		return "unsupported specification version: no version marker found (expected 'openapi' or 'swagger')"
	}
	return fmt.Sprintf("unsupported specification version: %s", e.Declared)
}

// Is reports whether target matches this error type.
func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// ProposalRejectedError represents a model response that could not be
// turned into an applicable edit batch. The repair loop treats this as
// "no progress this round", not as a fatal error.
type ProposalRejectedError struct {
	// Reason describes why the proposal was rejected
	Reason string
	// Path is the offending path from the proposal, if any
	Path string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ProposalRejectedError) Error() string {
	msg := "proposal rejected"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path %s)", e.Path)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ProposalRejectedError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ProposalRejectedError) Is(target error) bool {
	return target == ErrProposalRejected
}

// ApplyError represents a failure to apply a single edit to the document,
// for example because an earlier edit in the same batch removed the target
// path. The loop controller discards the whole batch on this error.
type ApplyError struct {
	// Path is the edit path that failed to apply
	Path string
	// Op is the edit operation ("set", "delete", or "insert")
	Op string
	// Message describes the failure
	Message string
}

// Error returns a human-readable error message.
func (e *ApplyError) Error() string {
	msg := "apply failure"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ApplyError) Is(target error) bool {
	return target == ErrApply
}

// UnknownOperationError represents a sub-schema extraction request that
// named an operationId absent from the document. Terminal for that request
// only; the owning session is unaffected.
type UnknownOperationError struct {
	// OperationID is the requested id that was not found
	OperationID string
}

// Error returns a human-readable error message.
func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation id: %s", e.OperationID)
}

// Is reports whether target matches this error type.
func (e *UnknownOperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

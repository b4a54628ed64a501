// Package severity provides severity level constants and utilities
// for violations and notes reported by the document, validator, and
// repair packages.
//
// The severity levels are ordered from most to least severe:
// Error < Warning < Info (by enum value; Error sorts first).
package severity

// Severity indicates the severity level of a violation or note.
type Severity int

const (
	// SeverityError indicates a violation that makes the document invalid
	// or gateway-incompatible. Only error-severity violations keep the
	// repair loop running.
	SeverityError Severity = iota

	// SeverityWarning indicates a best-practice violation or a lossy
	// normalization step that does not prevent processing.
	SeverityWarning

	// SeverityInfo indicates informational notes about processing choices.
	SeverityInfo
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity as its string form, so JSON output
// carries "error" rather than the enum value.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the string form.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = Parse(string(text))
	return nil
}

// MarshalYAML renders the severity as its string form.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Parse returns the Severity for its string form, defaulting to
// SeverityError for unrecognized input.
func Parse(s string) Severity {
	switch s {
	case "warning":
		return SeverityWarning
	case "info":
		return SeverityInfo
	default:
		return SeverityError
	}
}

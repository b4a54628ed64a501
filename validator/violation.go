package validator

import (
	"fmt"
	"sort"

	"github.com/specmend/specmend/internal/severity"
)

// Severity indicates the severity level of a violation
type Severity = severity.Severity

const (
	// SeverityError indicates a violation that blocks gateway import
	SeverityError = severity.SeverityError
	// SeverityWarning indicates a best practice violation or recommendation
	SeverityWarning = severity.SeverityWarning
)

// Violation represents a single detected non-conformance, tied to a
// document path. Violations are produced fresh on each validation pass and
// never mutated afterwards.
type Violation struct {
	// Path is the display-form path to the offending node
	// (e.g. "paths./pets.get")
	Path string `json:"path" yaml:"path"`
	// RuleID identifies the rule that produced the violation
	// (e.g. "gateway/operation-id-required")
	RuleID string `json:"rule_id" yaml:"rule_id"`
	// Message is a human-readable description of the violation
	Message string `json:"message" yaml:"message"`
	// Severity indicates the severity level of the violation
	Severity Severity `json:"severity" yaml:"severity"`
	// Line is the 1-based line number in the source document (0 if unknown)
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
	// Column is the 1-based column number in the source document (0 if unknown)
	Column int `json:"column,omitempty" yaml:"column,omitempty"`
	// Value is the offending value, when one exists
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
}

// String returns a formatted representation of the violation.
// Uses "✗" for errors and "⚠" for warnings.
func (v Violation) String() string {
	symbol := "✗"
	if v.Severity == SeverityWarning {
		symbol = "⚠"
	}
	if v.Line > 0 {
		return fmt.Sprintf("%s %s (line %d, col %d): %s [%s]", symbol, v.Path, v.Line, v.Column, v.Message, v.RuleID)
	}
	return fmt.Sprintf("%s %s: %s [%s]", symbol, v.Path, v.Message, v.RuleID)
}

// sortViolations orders violations deterministically: errors before
// warnings, then by path, then by rule id as the final tie-break.
func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.RuleID < b.RuleID
	})
}

// ErrorCount returns the number of error-severity violations.
func ErrorCount(violations []Violation) int {
	n := 0
	for _, v := range violations {
		if v.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity violations.
func WarningCount(violations []Violation) int {
	n := 0
	for _, v := range violations {
		if v.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

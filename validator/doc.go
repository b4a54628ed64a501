// Package validator checks specification documents against OpenAPI 3.0
// structure and a configurable gateway constraint table.
//
// Validation runs two rule tiers in fixed order: structural conformance
// (required fields, well-formed paths, reference resolution) and gateway
// constraints (operationId naming, schema nesting depth, disallowed
// keywords, required descriptions). The resulting violations are ordered
// deterministically by severity, path, and rule id, so repeated runs over
// identical input produce identical output; the repair loop's convergence
// detection depends on this.
//
// Validate never mutates the document.
package validator

package validator

import (
	"go.yaml.in/yaml/v4"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/rules"
)

// Rule identifiers for the structural tier.
const (
	RuleOpenAPIRequired      = "structural/openapi-required"
	RuleInfoRequired         = "structural/info-required"
	RuleInfoTitle            = "structural/info-title"
	RuleInfoVersion          = "structural/info-version"
	RulePathsRequired        = "structural/paths-required"
	RulePathLeadingSlash     = "structural/path-leading-slash"
	RuleOperationResponses   = "structural/operation-responses"
	RulePathParamRequired    = "structural/path-param-required"
	RuleRefResolution        = "structural/ref-resolution"
	RuleRefCycle             = "structural/ref-cycle"
	RuleRefExternal          = "structural/ref-external"
	RuleDuplicateOperationID = "structural/duplicate-operation-id"
)

// Rule identifiers for the gateway tier.
const (
	RuleOperationIDRequired = "gateway/operation-id-required"
	RuleOperationIDPattern  = "gateway/operation-id-pattern"
	RuleSchemaDepth         = "gateway/schema-depth"
	RuleDisallowedKeyword   = "gateway/disallowed-keyword"
	RuleDescriptionRequired = "gateway/description-required"
)

// operationMethods are the HTTP methods an OpenAPI 3.0 path item may carry.
var operationMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Validator checks documents against OpenAPI 3.0 structure and a gateway
// constraint table. A Validator is immutable after construction and safe
// for concurrent use across sessions.
type Validator struct {
	// Rules is the gateway constraint table for the second rule tier.
	Rules *rules.Table
	// IncludeWarnings determines whether warning-severity violations are
	// reported alongside errors.
	IncludeWarnings bool
}

// New creates a Validator with the given constraint table. A nil table
// selects the built-in defaults.
func New(table *rules.Table) *Validator {
	if table == nil {
		table = rules.Default()
	}
	return &Validator{Rules: table, IncludeWarnings: true}
}

// Validate runs both rule tiers against the document and returns the
// violations in deterministic order. The document is never mutated.
func (v *Validator) Validate(doc *document.Document) []Violation {
	run := &validation{doc: doc, rules: v.Rules}

	run.validateRoot()
	run.validatePaths()
	run.validateRefs()
	run.validateGateway()

	violations := run.violations
	if !v.IncludeWarnings {
		errorsOnly := violations[:0]
		for _, viol := range violations {
			if viol.Severity == SeverityError {
				errorsOnly = append(errorsOnly, viol)
			}
		}
		violations = errorsOnly
	}
	sortViolations(violations)
	return violations
}

// validation carries the state of a single validation pass.
type validation struct {
	doc        *document.Document
	rules      *rules.Table
	violations []Violation
}

// add appends a violation, filling line/column provenance from node.
func (run *validation) add(path document.Path, node *yaml.Node, ruleID, message string, sev Severity, value any) {
	viol := Violation{
		Path:     path.String(),
		RuleID:   ruleID,
		Message:  message,
		Severity: sev,
		Value:    value,
	}
	if node != nil {
		viol.Line = node.Line
		viol.Column = node.Column
	}
	run.violations = append(run.violations, viol)
}

// addError appends an error-severity violation.
func (run *validation) addError(path document.Path, node *yaml.Node, ruleID, message string) {
	run.add(path, node, ruleID, message, SeverityError, nil)
}

// addWarning appends a warning-severity violation.
func (run *validation) addWarning(path document.Path, node *yaml.Node, ruleID, message string) {
	run.add(path, node, ruleID, message, SeverityWarning, nil)
}

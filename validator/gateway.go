package validator

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/specmend/specmend/document"
)

// schemaChildKeys are the schema keywords whose values are themselves
// schemas (or maps/sequences of schemas). Used for depth measurement and
// keyword scanning. $ref targets are not followed; depth is measured on
// the inline structure only.
var (
	schemaChildMaps  = []string{"properties", "patternProperties"}
	schemaChildOnes  = []string{"items", "additionalProperties", "not"}
	schemaChildLists = []string{"allOf", "oneOf", "anyOf"}
)

// validateGateway runs the second rule tier from the constraint table.
func (run *validation) validateGateway() {
	run.validateGatewayOperations()
	run.validateGatewaySchemas()
}

// validateGatewayOperations checks operationId presence and naming plus
// description requirements on operations and parameters.
func (run *validation) validateGatewayOperations() {
	paths, ok := document.MapGet(run.doc.Root(), "paths")
	if !ok {
		return
	}

	for _, pathEntry := range document.MapEntries(paths) {
		for _, method := range operationMethods {
			op, ok := document.MapGet(pathEntry.Value, method)
			if !ok || op.Kind != yaml.MappingNode {
				continue
			}
			opPath := document.Path{"paths", pathEntry.Key, method}

			run.checkOperationID(op, opPath, pathEntry.Key, method)

			if run.rules.RequireDescriptions {
				run.checkOperationDescription(op, opPath)
				run.checkParameterDescriptions(op, opPath)
			}
		}
	}
}

// checkOperationID verifies the operation has an id matching the
// configured pattern, suggesting a conforming id when it does not.
func (run *validation) checkOperationID(op *yaml.Node, opPath document.Path, pathKey, method string) {
	id, ok := document.MapGet(op, "operationId")
	if !ok || id.Value == "" {
		run.add(opPath, op, RuleOperationIDRequired,
			fmt.Sprintf("Operation must have an operationId (suggestion: %q)", suggestOperationID(method, pathKey)),
			SeverityError, nil)
		return
	}
	if pattern := run.rules.Pattern(); pattern != nil && !pattern.MatchString(id.Value) {
		run.add(opPath.Child("operationId"), id, RuleOperationIDPattern,
			fmt.Sprintf("operationId %q does not match the gateway pattern %s", id.Value, pattern.String()),
			SeverityError, id.Value)
	}
}

// checkOperationDescription requires a description or summary on the
// operation for agent consumability.
func (run *validation) checkOperationDescription(op *yaml.Node, opPath document.Path) {
	desc, hasDesc := document.MapGet(op, "description")
	summary, hasSummary := document.MapGet(op, "summary")
	if (hasDesc && desc.Value != "") || (hasSummary && summary.Value != "") {
		return
	}
	run.addError(opPath, op, RuleDescriptionRequired,
		"Operation must have a description or summary")
}

// checkParameterDescriptions requires a description on each parameter.
func (run *validation) checkParameterDescriptions(op *yaml.Node, opPath document.Path) {
	params, ok := document.MapGet(op, "parameters")
	if !ok || params.Kind != yaml.SequenceNode {
		return
	}
	for i, param := range params.Content {
		if param.Kind != yaml.MappingNode {
			continue
		}
		if _, isRef := document.MapGet(param, "$ref"); isRef {
			continue
		}
		desc, ok := document.MapGet(param, "description")
		if ok && desc.Value != "" {
			continue
		}
		name, _ := document.MapGet(param, "name")
		label := "parameter"
		if name != nil {
			label = fmt.Sprintf("parameter %q", name.Value)
		}
		run.addError(opPath.Child("parameters").Child(fmt.Sprintf("%d", i)), param,
			RuleDescriptionRequired, fmt.Sprintf("%s must have a description", strings.ToUpper(label[:1])+label[1:]))
	}
}

// validateGatewaySchemas checks nesting depth and disallowed keywords over
// component schemas and inline schemas alike.
func (run *validation) validateGatewaySchemas() {
	components, ok := document.MapGet(run.doc.Root(), "components")
	if ok {
		if schemas, ok := document.MapGet(components, "schemas"); ok {
			for _, entry := range document.MapEntries(schemas) {
				run.checkSchema(entry.Value, document.Path{"components", "schemas", entry.Key})
			}
		}
	}

	// Inline schemas under paths are checked at their content roots.
	paths, ok := document.MapGet(run.doc.Root(), "paths")
	if !ok {
		return
	}
	walkInlineSchemas(paths, document.Path{"paths"}, func(schema *yaml.Node, at document.Path) {
		run.checkSchema(schema, at)
	})
}

// checkSchema applies depth and keyword rules to one schema root.
func (run *validation) checkSchema(schema *yaml.Node, at document.Path) {
	if max := run.rules.MaxSchemaDepth; max > 0 {
		if depth := schemaDepth(schema); depth > max {
			run.add(at, schema, RuleSchemaDepth,
				fmt.Sprintf("Schema nesting depth %d exceeds the gateway maximum of %d", depth, max),
				SeverityError, depth)
		}
	}
	if len(run.rules.DisallowedKeywords) > 0 {
		run.checkDisallowedKeywords(schema, at)
	}
}

// schemaDepth measures the nesting depth of an inline schema tree.
// $refs are not followed, so the measurement always terminates.
func schemaDepth(schema *yaml.Node) int {
	if schema == nil || schema.Kind != yaml.MappingNode {
		return 0
	}
	deepest := 0
	for _, key := range schemaChildMaps {
		if children, ok := document.MapGet(schema, key); ok {
			for _, entry := range document.MapEntries(children) {
				if d := schemaDepth(entry.Value); d > deepest {
					deepest = d
				}
			}
		}
	}
	for _, key := range schemaChildOnes {
		if child, ok := document.MapGet(schema, key); ok {
			if d := schemaDepth(child); d > deepest {
				deepest = d
			}
		}
	}
	for _, key := range schemaChildLists {
		if children, ok := document.MapGet(schema, key); ok && children.Kind == yaml.SequenceNode {
			for _, child := range children.Content {
				if d := schemaDepth(child); d > deepest {
					deepest = d
				}
			}
		}
	}
	return deepest + 1
}

// checkDisallowedKeywords scans one schema tree for keywords the gateway
// rejects.
func (run *validation) checkDisallowedKeywords(schema *yaml.Node, at document.Path) {
	if schema == nil || schema.Kind != yaml.MappingNode {
		return
	}
	for _, entry := range document.MapEntries(schema) {
		if run.rules.IsDisallowed(entry.Key) {
			run.add(at.Child(entry.Key), entry.KeyNode, RuleDisallowedKeyword,
				fmt.Sprintf("Keyword %q is not supported by the gateway", entry.Key),
				SeverityError, entry.Key)
		}
		run.checkDisallowedKeywords(entry.Value, at.Child(entry.Key))
		if entry.Value.Kind == yaml.SequenceNode {
			for i, item := range entry.Value.Content {
				run.checkDisallowedKeywords(item, at.Child(entry.Key).Child(fmt.Sprintf("%d", i)))
			}
		}
	}
}

// walkInlineSchemas visits every "schema" value nested under n.
func walkInlineSchemas(n *yaml.Node, at document.Path, visit func(*yaml.Node, document.Path)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			childPath := at.Child(key.Value)
			if key.Value == "schema" && value.Kind == yaml.MappingNode {
				visit(value, childPath)
				continue
			}
			walkInlineSchemas(value, childPath, visit)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			walkInlineSchemas(item, at.Child(fmt.Sprintf("%d", i)), visit)
		}
	}
}

// titleCaser performs Unicode-aware title casing for operationId
// suggestions.
var titleCaser = cases.Title(language.English, cases.NoLower)

// suggestOperationID builds a conforming camelCase operationId from the
// HTTP method and path template segments, e.g. GET /pets/{petId} ->
// "getPetsByPetId".
func suggestOperationID(method, pathKey string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, segment := range strings.Split(pathKey, "/") {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			b.WriteString("By")
			segment = strings.Trim(segment, "{}")
		}
		segment = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return -1
			}
		}, segment)
		if segment == "" {
			continue
		}
		b.WriteString(titleCaser.String(segment))
	}
	return b.String()
}

package validator

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/specmend/specmend/document"
)

// validateRoot checks the top-level required fields of an OpenAPI 3.0
// document: the version marker, the info object, and the paths object.
func (run *validation) validateRoot() {
	root := run.doc.Root()

	if openapi, ok := document.MapGet(root, "openapi"); !ok {
		run.addError(nil, root, RuleOpenAPIRequired, "Document must have an openapi version field")
	} else if !strings.HasPrefix(openapi.Value, "3.") {
		run.add(document.Path{"openapi"}, openapi, RuleOpenAPIRequired,
			fmt.Sprintf("openapi version must be 3.x, found %q", openapi.Value), SeverityError, openapi.Value)
	}

	info, ok := document.MapGet(root, "info")
	if !ok {
		run.addError(nil, root, RuleInfoRequired, "Document must have an info object")
	} else {
		if title, ok := document.MapGet(info, "title"); !ok || title.Value == "" {
			run.addError(document.Path{"info"}, info, RuleInfoTitle, "Info object must have a title")
		}
		if version, ok := document.MapGet(info, "version"); !ok || version.Value == "" {
			run.addError(document.Path{"info"}, info, RuleInfoVersion, "Info object must have a version")
		}
	}

	if _, ok := document.MapGet(root, "paths"); !ok {
		run.addError(nil, root, RulePathsRequired, "Document must have a paths object")
	}
}

// validatePaths checks each path item and its operations: leading slash,
// response presence, path parameter requiredness, and operationId
// uniqueness.
func (run *validation) validatePaths() {
	paths, ok := document.MapGet(run.doc.Root(), "paths")
	if !ok {
		return
	}

	seenOperationIDs := make(map[string]string)

	for _, pathEntry := range document.MapEntries(paths) {
		pathPrefix := document.Path{"paths", pathEntry.Key}

		if !strings.HasPrefix(pathEntry.Key, "/") {
			run.add(pathPrefix, pathEntry.KeyNode, RulePathLeadingSlash,
				"Path must start with '/'", SeverityError, pathEntry.Key)
		}

		run.validateParameterList(pathEntry.Value, pathPrefix)

		for _, method := range operationMethods {
			op, ok := document.MapGet(pathEntry.Value, method)
			if !ok || op.Kind != yaml.MappingNode {
				continue
			}
			opPath := pathPrefix.Child(method)

			run.validateOperation(op, opPath)
			run.checkDuplicateOperationID(op, opPath, seenOperationIDs)
		}
	}
}

// validateOperation checks a single operation's responses and parameters.
func (run *validation) validateOperation(op *yaml.Node, opPath document.Path) {
	responses, ok := document.MapGet(op, "responses")
	if !ok || len(document.MapEntries(responses)) == 0 {
		run.addError(opPath, op, RuleOperationResponses,
			"Operation must have at least one response")
	}

	run.validateParameterList(op, opPath)
}

// validateParameterList checks the parameters sequence of a path item or
// operation: path parameters must declare required: true.
func (run *validation) validateParameterList(owner *yaml.Node, ownerPath document.Path) {
	params, ok := document.MapGet(owner, "parameters")
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
		in, _ := document.MapGet(param, "in")
		if in == nil || in.Value != "path" {
			continue
		}
		required, ok := document.MapGet(param, "required")
		if !ok || required.Value != "true" {
			paramPath := ownerPath.Child("parameters").Child(fmt.Sprintf("%d", i))
			run.addError(paramPath, param, RulePathParamRequired,
				"Path parameters must have required: true")
		}
	}
}

// checkDuplicateOperationID records an operation's id and reports reuse.
func (run *validation) checkDuplicateOperationID(op *yaml.Node, opPath document.Path, seen map[string]string) {
	id, ok := document.MapGet(op, "operationId")
	if !ok || id.Value == "" {
		return
	}
	if firstPath, dup := seen[id.Value]; dup {
		run.add(opPath.Child("operationId"), id, RuleDuplicateOperationID,
			fmt.Sprintf("Duplicate operationId %q (first used at %s)", id.Value, firstPath),
			SeverityError, id.Value)
		return
	}
	seen[id.Value] = opPath.String()
}

package extractor

import (
	"errors"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/specerrors"
)

var operationMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Request selects the operations to extract.
type Request struct {
	// OperationIDs names the operations to keep. Every id must exist in
	// the source document.
	OperationIDs []string
}

// Extract builds a new document containing only the requested operations,
// the path items that carry them, and the transitive closure of
// everything they reference. Returns *specerrors.UnknownOperationError
// when an id does not exist in the source.
func Extract(doc *document.Document, req Request) (*document.Document, error) {
	if len(req.OperationIDs) == 0 {
		return nil, errors.New("extractor: no operation ids requested")
	}

	index := indexOperations(doc)
	selected := make(map[string]map[string]bool)
	for _, id := range req.OperationIDs {
		loc, ok := index[id]
		if !ok {
			return nil, &specerrors.UnknownOperationError{OperationID: id}
		}
		if selected[loc.pathKey] == nil {
			selected[loc.pathKey] = make(map[string]bool)
		}
		selected[loc.pathKey][loc.method] = true
	}

	root := document.MappingNode()
	for _, key := range []string{"openapi", "info", "servers"} {
		if node, ok := document.MapGet(doc.Root(), key); ok {
			document.MapSet(root, key, document.CopyNode(node))
		}
	}

	schemeNames := make(map[string]bool)
	if security, ok := document.MapGet(doc.Root(), "security"); ok {
		document.MapSet(root, "security", document.CopyNode(security))
		collectSchemeNames(security, schemeNames)
	}

	paths, tagNames := extractPaths(doc, selected, schemeNames)
	if tags := filterTags(doc, tagNames); tags != nil {
		document.MapSet(root, "tags", tags)
	}
	document.MapSet(root, "paths", paths)

	if components := extractComponents(doc, paths, schemeNames); components != nil {
		document.MapSet(root, "components", components)
	}

	return document.NewFromRoot(root, doc.Format(), doc.Version()), nil
}

type location struct {
	pathKey string
	method  string
}

// indexOperations maps every operationId to its location. Duplicate ids
// keep the first occurrence, matching validation's duplicate rule.
func indexOperations(doc *document.Document) map[string]location {
	index := make(map[string]location)
	paths, ok := document.MapGet(doc.Root(), "paths")
	if !ok {
		return index
	}
	for _, pathEntry := range document.MapEntries(paths) {
		for _, method := range operationMethods {
			op, ok := document.MapGet(pathEntry.Value, method)
			if !ok || op.Kind != yaml.MappingNode {
				continue
			}
			id, ok := document.MapGet(op, "operationId")
			if !ok || id.Value == "" {
				continue
			}
			if _, dup := index[id.Value]; !dup {
				index[id.Value] = location{pathKey: pathEntry.Key, method: method}
			}
		}
	}
	return index
}

// extractPaths copies the selected path items, keeping only selected
// methods plus the path item's shared keys. Also gathers the tag names
// and security scheme names used by the kept operations.
func extractPaths(doc *document.Document, selected map[string]map[string]bool, schemeNames map[string]bool) (*yaml.Node, map[string]bool) {
	out := document.MappingNode()
	tagNames := make(map[string]bool)

	paths, ok := document.MapGet(doc.Root(), "paths")
	if !ok {
		return out, tagNames
	}
	for _, pathEntry := range document.MapEntries(paths) {
		methods, ok := selected[pathEntry.Key]
		if !ok {
			continue
		}
		item := document.MappingNode()
		for _, entry := range document.MapEntries(pathEntry.Value) {
			if isMethod(entry.Key) {
				if !methods[entry.Key] {
					continue
				}
				collectSchemeNames(operationSecurity(entry.Value), schemeNames)
				collectTagNames(entry.Value, tagNames)
			}
			document.MapSet(item, entry.Key, document.CopyNode(entry.Value))
		}
		document.MapSet(out, pathEntry.Key, item)
	}
	return out, tagNames
}

func isMethod(key string) bool {
	for _, m := range operationMethods {
		if key == m {
			return true
		}
	}
	return false
}

func operationSecurity(op *yaml.Node) *yaml.Node {
	security, ok := document.MapGet(op, "security")
	if !ok {
		return nil
	}
	return security
}

// collectSchemeNames records the security scheme names a security
// requirement list uses.
func collectSchemeNames(security *yaml.Node, into map[string]bool) {
	if security == nil || security.Kind != yaml.SequenceNode {
		return
	}
	for _, requirement := range security.Content {
		for _, entry := range document.MapEntries(requirement) {
			into[entry.Key] = true
		}
	}
}

// collectTagNames records the tags an operation declares.
func collectTagNames(op *yaml.Node, into map[string]bool) {
	tags, ok := document.MapGet(op, "tags")
	if !ok || tags.Kind != yaml.SequenceNode {
		return
	}
	for _, tag := range tags.Content {
		if tag.Kind == yaml.ScalarNode {
			into[tag.Value] = true
		}
	}
}

// filterTags keeps the root tag declarations the kept operations use, in
// source order. Returns nil when nothing survives.
func filterTags(doc *document.Document, tagNames map[string]bool) *yaml.Node {
	tags, ok := document.MapGet(doc.Root(), "tags")
	if !ok || tags.Kind != yaml.SequenceNode || len(tagNames) == 0 {
		return nil
	}
	out := document.SequenceNode()
	for _, tag := range tags.Content {
		name, ok := document.MapGet(tag, "name")
		if ok && tagNames[name.Value] {
			out.Content = append(out.Content, document.CopyNode(tag))
		}
	}
	if len(out.Content) == 0 {
		return nil
	}
	return out
}

// extractComponents computes the transitive $ref closure of the kept
// paths and assembles the needed components in source order. Returns nil
// when no component is referenced.
func extractComponents(doc *document.Document, paths *yaml.Node, schemeNames map[string]bool) *yaml.Node {
	needed := make(map[string]bool)
	for name := range schemeNames {
		needed["securitySchemes/"+name] = true
	}

	// Seed with refs from the kept paths, then chase refs inside each
	// included component until the closure is stable.
	var pending []string
	collectRefs(paths, func(ref string) { pending = append(pending, ref) })

	visited := make(map[string]bool)
	for len(pending) > 0 {
		ref := pending[0]
		pending = pending[1:]
		key, ok := componentKey(ref)
		if !ok || visited[key] {
			continue
		}
		visited[key] = true
		needed[key] = true

		target, ok := doc.Lookup(document.Path{"components"}.Child(strings.Split(key, "/")[0]).Child(strings.Split(key, "/")[1]))
		if !ok {
			continue
		}
		collectRefs(target, func(ref string) { pending = append(pending, ref) })
	}

	components, ok := document.MapGet(doc.Root(), "components")
	if !ok || len(needed) == 0 {
		return nil
	}
	out := document.MappingNode()
	for _, section := range document.MapEntries(components) {
		kept := document.MappingNode()
		for _, entry := range document.MapEntries(section.Value) {
			if needed[section.Key+"/"+entry.Key] {
				document.MapSet(kept, entry.Key, document.CopyNode(entry.Value))
			}
		}
		if len(kept.Content) > 0 {
			document.MapSet(out, section.Key, kept)
		}
	}
	if len(out.Content) == 0 {
		return nil
	}
	return out
}

// componentKey converts a local components ref into a "section/name" key.
func componentKey(ref string) (string, bool) {
	const prefix = "#/components/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	rest := strings.Split(strings.TrimPrefix(ref, prefix), "/")
	if len(rest) != 2 {
		return "", false
	}
	return rest[0] + "/" + rest[1], true
}

// collectRefs walks a subtree and reports every $ref value in it.
func collectRefs(n *yaml.Node, visit func(string)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Value == "$ref" && value.Kind == yaml.ScalarNode {
				visit(value.Value)
				continue
			}
			collectRefs(value, visit)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			collectRefs(item, visit)
		}
	}
}

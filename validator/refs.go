package validator

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/specmend/specmend/document"
)

// refSite records one $ref occurrence: where it is written and what it
// points at.
type refSite struct {
	path document.Path
	node *yaml.Node
	ref  string
}

// validateRefs checks that every local $ref resolves to an existing node
// and reports cyclic reference chains that never reach a concrete node.
func (run *validation) validateRefs() {
	var sites []refSite
	collectRefs(run.doc.Root(), nil, &sites)

	for _, site := range sites {
		if !strings.HasPrefix(site.ref, "#/") {
			run.addWarning(site.path, site.node, RuleRefExternal,
				fmt.Sprintf("External reference %q is not validated", site.ref))
			continue
		}

		target, ok := resolvePointer(run.doc, site.ref)
		if !ok {
			run.add(site.path, site.node, RuleRefResolution,
				fmt.Sprintf("Reference %q does not resolve to an existing node", site.ref),
				SeverityError, site.ref)
			continue
		}

		// Follow chains of pure-$ref nodes; a chain that revisits a
		// reference can never resolve to content and is reported rather
		// than silently dropped.
		if cycle := followRefChain(run.doc, site.ref, target); cycle != "" {
			run.add(site.path, site.node, RuleRefCycle,
				fmt.Sprintf("Reference %q is part of an unresolvable cycle through %q", site.ref, cycle),
				SeverityError, site.ref)
		}
	}
}

// collectRefs gathers every $ref scalar in the tree with its path.
func collectRefs(n *yaml.Node, at document.Path, sites *[]refSite) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Value == "$ref" && value.Kind == yaml.ScalarNode {
				*sites = append(*sites, refSite{path: at.Child("$ref"), node: value, ref: value.Value})
				continue
			}
			collectRefs(value, at.Child(key.Value), sites)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			collectRefs(item, at.Child(fmt.Sprintf("%d", i)), sites)
		}
	}
}

// resolvePointer resolves a local JSON pointer reference ("#/a/b") against
// the document, unescaping ~1 and ~0 per RFC 6901.
func resolvePointer(doc *document.Document, ref string) (*yaml.Node, bool) {
	pointer := strings.TrimPrefix(ref, "#/")
	if pointer == "" {
		return doc.Root(), true
	}
	segments := strings.Split(pointer, "/")
	path := make(document.Path, len(segments))
	for i, segment := range segments {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		path[i] = segment
	}
	return doc.Lookup(path)
}

// followRefChain walks nodes that are nothing but a $ref to another node.
// Returns the reference where a cycle closes, or "" when the chain reaches
// concrete content (or leaves the local document).
func followRefChain(doc *document.Document, start string, target *yaml.Node) string {
	visited := map[string]bool{start: true}
	for {
		next, ok := pureRef(target)
		if !ok {
			return ""
		}
		if !strings.HasPrefix(next, "#/") {
			return ""
		}
		if visited[next] {
			return next
		}
		visited[next] = true
		target, ok = resolvePointer(doc, next)
		if !ok {
			// Dangling tail of the chain; reported separately by the
			// resolution check on that node.
			return ""
		}
	}
}

// pureRef returns the reference of a mapping node whose only meaningful
// content is a $ref.
func pureRef(n *yaml.Node) (string, bool) {
	if n == nil || n.Kind != yaml.MappingNode {
		return "", false
	}
	ref, ok := document.MapGet(n, "$ref")
	if !ok || ref.Kind != yaml.ScalarNode {
		return "", false
	}
	return ref.Value, true
}

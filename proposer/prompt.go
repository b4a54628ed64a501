package proposer

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/validator"
)

// maxExcerptBytes caps how much of the document is quoted per violation.
const maxExcerptBytes = 2048

const promptPreamble = `You repair OpenAPI 3.0 documents. You will be given a list of
validation violations and excerpts of the document around each one.
Respond with a JSON array of edit objects and nothing else. Each edit is:

  {"path": ["segment", ...], "op": "set" | "delete" | "insert", "value": <any>}

Rules:
- "path" addresses a node from the document root, one map key or
  sequence index (as a decimal string) per segment.
- "set" replaces the node at the path, or creates it when only the final
  segment is missing. "delete" removes an existing node. "insert" adds a
  new map key or splices a sequence element.
- Propose the smallest set of edits that fixes the violations. Do not
  restructure parts of the document that are not in violation.
- Respond with [] if you cannot fix anything.`

// buildPrompt renders the violations and the document context around each
// one into the model prompt.
func buildPrompt(doc *document.Document, violations []validator.Violation) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nViolations:\n")
	for i, viol := range violations {
		fmt.Fprintf(&b, "%d. [%s] %s at %s", i+1, viol.RuleID, viol.Message, viol.Path)
		if viol.Line > 0 {
			fmt.Fprintf(&b, " (line %d)", viol.Line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nDocument context:\n")
	for _, excerpt := range collectExcerpts(doc, violations) {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", excerpt.path, excerpt.text)
	}
	return b.String()
}

type excerpt struct {
	path string
	text string
}

// collectExcerpts serializes the subtree around each violation, walking up
// to the nearest marshalable ancestor and deduplicating shared subtrees.
func collectExcerpts(doc *document.Document, violations []validator.Violation) []excerpt {
	seen := make(map[string]bool)
	var out []excerpt
	for _, viol := range violations {
		path := parseViolationPath(viol.Path)
		// Quote the violating node's parent so the model sees siblings.
		if len(path) > 0 {
			path = path.Parent()
		}
		key := path.String()
		if seen[key] {
			continue
		}
		seen[key] = true

		node, ok := doc.Lookup(path)
		if !ok {
			continue
		}
		text, err := marshalNode(node)
		if err != nil {
			continue
		}
		if len(text) > maxExcerptBytes {
			text = text[:maxExcerptBytes] + "\n# (truncated)"
		}
		out = append(out, excerpt{path: key, text: text})
	}
	return out
}

// parseViolationPath converts a rendered violation path back into
// segments. A rendered path is ambiguous when a key itself contains a
// dot; the excerpt walk tolerates the resulting failed lookup and simply
// skips that excerpt.
func parseViolationPath(rendered string) document.Path {
	if rendered == "" || rendered == "$" {
		return nil
	}
	return document.Path(strings.Split(rendered, "."))
}

func marshalNode(n *yaml.Node) (string, error) {
	data, err := yaml.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Package rules defines the gateway constraint table used by the validator.
//
// The authoritative constraint set varies by gateway deployment, so the
// table is configuration data rather than hard-coded logic: Default()
// returns the built-in defaults, and LoadFile() layers a YAML file on top
// of them. Tables are immutable after construction and safe to share
// across concurrent repair sessions.
package rules

import (
	"fmt"
	"regexp"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Table is the gateway constraint set applied by the validator's second
// rule tier. Construct via Default or LoadFile; a zero Table is not usable.
type Table struct {
	// OperationIDPattern is the regular expression every operationId must
	// match.
	OperationIDPattern string `koanf:"operation-id-pattern"`
	// MaxSchemaDepth is the maximum allowed nesting depth for schema
	// objects (0 disables the check).
	MaxSchemaDepth int `koanf:"max-schema-depth"`
	// DisallowedKeywords lists schema keywords the gateway rejects.
	DisallowedKeywords []string `koanf:"disallowed-keywords"`
	// RequireDescriptions requires a description on every operation and
	// parameter, for agent consumability.
	RequireDescriptions bool `koanf:"require-descriptions"`

	pattern *regexp.Regexp
}

// defaults are the built-in gateway constraints, applied when no
// configuration file overrides them.
var defaults = map[string]any{
	"operation-id-pattern": "^[a-zA-Z0-9_-]{1,64}$",
	"max-schema-depth":     5,
	"disallowed-keywords":  []string{},
	"require-descriptions": true,
}

// Default returns the built-in gateway constraint table.
func Default() *Table {
	t, err := fromKoanf(newKoanf())
	if err != nil {
		// The built-in defaults are known-good; reaching here is a bug.
		panic(fmt.Sprintf("rules: invalid built-in defaults: %v", err))
	}
	return t
}

// LoadFile returns the constraint table from a YAML file layered over the
// built-in defaults. Keys absent from the file keep their default values.
func LoadFile(path string) (*Table, error) {
	k := newKoanf()
	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return nil, fmt.Errorf("rules: loading %s: %w", path, err)
	}
	return fromKoanf(k)
}

// newKoanf returns a koanf instance primed with the built-in defaults.
func newKoanf() *koanf.Koanf {
	k := koanf.New(".")
	// confmap cannot fail on a literal map.
	_ = k.Load(confmap.Provider(defaults, "."), nil)
	return k
}

// fromKoanf unmarshals and validates a Table from loaded configuration.
func fromKoanf(k *koanf.Koanf) (*Table, error) {
	var t Table
	if err := k.Unmarshal("", &t); err != nil {
		return nil, fmt.Errorf("rules: unmarshaling table: %w", err)
	}
	if t.OperationIDPattern != "" {
		pattern, err := regexp.Compile(t.OperationIDPattern)
		if err != nil {
			return nil, fmt.Errorf("rules: invalid operation-id-pattern: %w", err)
		}
		t.pattern = pattern
	}
	if t.MaxSchemaDepth < 0 {
		return nil, fmt.Errorf("rules: max-schema-depth cannot be negative: %d", t.MaxSchemaDepth)
	}
	return &t, nil
}

// Pattern returns the compiled operationId pattern, or nil when no pattern
// is configured.
func (t *Table) Pattern() *regexp.Regexp {
	return t.pattern
}

// IsDisallowed reports whether keyword appears in the disallowed set.
func (t *Table) IsDisallowed(keyword string) bool {
	for _, k := range t.DisallowedKeywords {
		if k == keyword {
			return true
		}
	}
	return false
}

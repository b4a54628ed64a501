package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specmend/specmend/specerrors"
	"go.yaml.in/yaml/v4"
)

// Option is a function that configures a load operation.
type Option func(*loadConfig) error

// loadConfig holds configuration for a load operation.
type loadConfig struct {
	formatHint Format
	logger     Logger
}

// WithFormatHint records the declared source encoding instead of detecting
// it from content. The hint only affects the recorded output preference;
// parsing always goes through the YAML engine.
func WithFormatHint(f Format) Option {
	return func(cfg *loadConfig) error {
		cfg.formatHint = f
		return nil
	}
}

// WithLogger sets the logger used to trace normalization steps.
func WithLogger(l Logger) Option {
	return func(cfg *loadConfig) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		cfg.logger = l
		return nil
	}
}

// Load parses raw JSON or YAML bytes into a Document, normalizing OpenAPI
// 2.0 input to 3.0.
//
// Fails with specerrors.ParseError on malformed syntax and with
// specerrors.UnsupportedVersionError when the document declares a version
// below 2.0 or lacks a recognizable version marker ("openapi" or "swagger").
func Load(data []byte, opts ...Option) (*Document, error) {
	cfg := &loadConfig{formatHint: FormatUnknown, logger: NopLogger{}}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("document: invalid options: %w", err)
		}
	}

	format := cfg.formatHint
	if format == FormatUnknown {
		format = DetectFormat(data)
	}
	if format == FormatUnknown {
		return nil, &specerrors.ParseError{Message: "empty document"}
	}

	var tree yaml.Node
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &specerrors.ParseError{Message: "malformed " + format.String(), Cause: err}
	}

	// Unwrap the yaml document node; the specification root must be a mapping.
	root := &tree
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, &specerrors.ParseError{Message: "empty document"}
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, &specerrors.ParseError{
			Line:    tree.Line,
			Column:  tree.Column,
			Message: "document root must be an object",
		}
	}

	doc := &Document{root: root, format: format}

	if err := detectVersion(doc); err != nil {
		return nil, err
	}

	if doc.sourceVersion == "2.0" {
		cfg.logger.Debug("normalizing swagger 2.0 document to openapi 3.0",
			"format", format.String())
		normalizeOAS2(doc, cfg.logger)
	}

	return doc, nil
}

// detectVersion reads the version marker and sets version/sourceVersion.
func detectVersion(doc *Document) error {
	if v, ok := MapGet(doc.root, "openapi"); ok {
		declared := strings.TrimSpace(v.Value)
		if !isSupportedOAS3(declared) {
			return &specerrors.UnsupportedVersionError{Declared: declared}
		}
		doc.version = declared
		doc.sourceVersion = declared
		return nil
	}

	if v, ok := MapGet(doc.root, "swagger"); ok {
		declared := strings.TrimSpace(v.Value)
		if declared != "2.0" {
			return &specerrors.UnsupportedVersionError{Declared: declared}
		}
		doc.version = normalizedVersion
		doc.sourceVersion = "2.0"
		return nil
	}

	return &specerrors.UnsupportedVersionError{}
}

// isSupportedOAS3 reports whether a declared openapi version is a 3.x
// version string we can process.
func isSupportedOAS3(declared string) bool {
	parts := strings.SplitN(declared, ".", 3)
	if len(parts) < 2 {
		return false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	return major == 3
}

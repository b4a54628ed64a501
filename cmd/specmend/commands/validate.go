package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/specmend/specmend"
	"github.com/specmend/specmend/validator"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Rules      string
	NoWarnings bool
	Quiet      bool
	Format     string
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	fs.StringVar(&flags.Rules, "rules", "", "gateway constraint file layered over the built-in defaults")
	fs.BoolVar(&flags.NoWarnings, "no-warnings", false, "suppress warning messages (only show errors)")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output validation result, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output validation result, no diagnostic messages")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: specmend validate [flags] <file|->\n\n")
		Writef(fs.Output(), "Validate an OpenAPI document against OpenAPI 3.0 structure and the gateway constraint table.\n")
		Writef(fs.Output(), "OAS 2.0 input is normalized to 3.0 before validation.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  specmend validate openapi.yaml\n")
		Writef(fs.Output(), "  specmend validate --rules gateway.yaml api-spec.yaml\n")
		Writef(fs.Output(), "  specmend validate --no-warnings openapi.json\n")
		Writef(fs.Output(), "  cat openapi.yaml | specmend validate -q -\n")
		Writef(fs.Output(), "  specmend validate --format json openapi.yaml | jq '.valid'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Validation successful\n")
		Writef(fs.Output(), "  1    Validation failed with errors\n")
	}

	return fs, flags
}

// validateReport is the structured output of the validate command.
type validateReport struct {
	Valid         bool                  `json:"valid" yaml:"valid"`
	Version       string                `json:"version" yaml:"version"`
	SourceVersion string                `json:"source_version,omitempty" yaml:"source_version,omitempty"`
	ErrorCount    int                   `json:"error_count" yaml:"error_count"`
	WarningCount  int                   `json:"warning_count" yaml:"warning_count"`
	Violations    []validator.Violation `json:"violations" yaml:"violations"`
}

// HandleValidate executes the validate command
func HandleValidate(args []string) error {
	fs, flags := SetupValidateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("validate command requires exactly one file path or '-' for stdin")
	}
	specPath := fs.Arg(0)

	// Validate format flag early to fail fast before expensive operations
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	table, err := LoadRulesTable(flags.Rules)
	if err != nil {
		return err
	}

	startTime := time.Now()
	doc, err := ReadSpec(specPath)
	if err != nil {
		return err
	}

	v := validator.New(table)
	v.IncludeWarnings = !flags.NoWarnings
	violations := v.Validate(doc)
	elapsed := time.Since(startTime)

	errorCount := validator.ErrorCount(violations)
	report := validateReport{
		Valid:         errorCount == 0,
		Version:       doc.Version(),
		SourceVersion: doc.SourceVersion(),
		ErrorCount:    errorCount,
		WarningCount:  validator.WarningCount(violations),
		Violations:    violations,
	}

	if flags.Format != FormatText {
		if err := OutputStructured(report, flags.Format); err != nil {
			return err
		}
	} else {
		if !flags.Quiet {
			Writef(os.Stderr, "specmend version: %s\n", specmend.Version())
			Writef(os.Stderr, "Specification: %s\n", FormatSpecPath(specPath))
			Writef(os.Stderr, "OAS Version: %s\n", doc.Version())
			Writef(os.Stderr, "Validation Time: %v\n\n", elapsed)
		}
		for _, viol := range violations {
			Writef(os.Stdout, "%s\n", viol.String())
		}
		if report.Valid {
			Writef(os.Stdout, "✓ Document is valid (%d warnings)\n", report.WarningCount)
		}
	}

	if !report.Valid {
		return fmt.Errorf("validation failed with %d errors", errorCount)
	}
	return nil
}

package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// ConvertFlags contains flags for the convert command
type ConvertFlags struct {
	Output string
	Format string
	Quiet  bool
}

// SetupConvertFlags creates and configures a FlagSet for the convert command.
// Returns the FlagSet and a ConvertFlags struct with bound flag variables.
func SetupConvertFlags() (*flag.FlagSet, *ConvertFlags) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	flags := &ConvertFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Format, "format", "", "document output format: yaml or json (default: same as input)")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the document, no diagnostic messages")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: specmend convert [flags] <file|->\n\n")
		Writef(fs.Output(), "Normalize an OpenAPI document to OpenAPI 3.0.3. OAS 2.0 constructs\n")
		Writef(fs.Output(), "(definitions, body/formData parameters, produces/consumes,\n")
		Writef(fs.Output(), "securityDefinitions) are rewritten to their 3.0 equivalents, preserving\n")
		Writef(fs.Output(), "key order. Lossy conversions are reported as notes on stderr.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  specmend convert swagger.yaml\n")
		Writef(fs.Output(), "  specmend convert -o openapi.json -format json swagger.yaml\n")
		Writef(fs.Output(), "  cat swagger.json | specmend convert -q - > openapi.json\n")
	}

	return fs, flags
}

// HandleConvert executes the convert command
func HandleConvert(args []string) error {
	fs, flags := SetupConvertFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("convert command requires exactly one file path or '-' for stdin")
	}

	doc, err := ReadSpec(fs.Arg(0))
	if err != nil {
		return err
	}

	format, err := DocumentFormat(flags.Format, doc)
	if err != nil {
		return err
	}
	data, err := doc.Marshal(format)
	if err != nil {
		return err
	}
	if err := WriteDocument(data, flags.Output); err != nil {
		return err
	}

	if !flags.Quiet {
		for _, note := range doc.Notes() {
			Writef(os.Stderr, "note [%s] %s: %s\n", note.Severity, note.Path, note.Message)
		}
	}
	return nil
}

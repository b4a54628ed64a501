package commands

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/specmend/specmend/extractor"
)

// ExtractFlags contains flags for the extract command
type ExtractFlags struct {
	Operations string
	Output     string
	Format     string
}

// SetupExtractFlags creates and configures a FlagSet for the extract command.
// Returns the FlagSet and an ExtractFlags struct with bound flag variables.
func SetupExtractFlags() (*flag.FlagSet, *ExtractFlags) {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	flags := &ExtractFlags{}

	fs.StringVar(&flags.Operations, "ops", "", "comma-separated operationIds to extract (required)")
	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Format, "format", "", "document output format: yaml or json (default: same as input)")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: specmend extract -ops <id,...> [flags] <file|->\n\n")
		Writef(fs.Output(), "Extract a self-contained sub-document containing only the named operations\n")
		Writef(fs.Output(), "and the transitive closure of everything they reference.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  specmend extract -ops listPets openapi.yaml\n")
		Writef(fs.Output(), "  specmend extract -ops listPets,createPet -o pets.yaml openapi.yaml\n")
		Writef(fs.Output(), "  cat openapi.yaml | specmend extract -ops getPetById -format json -\n")
	}

	return fs, flags
}

// HandleExtract executes the extract command
func HandleExtract(args []string) error {
	fs, flags := SetupExtractFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("extract command requires exactly one file path or '-' for stdin")
	}
	if flags.Operations == "" {
		fs.Usage()
		return fmt.Errorf("extract command requires -ops with at least one operationId")
	}

	var ids []string
	for _, id := range strings.Split(flags.Operations, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	doc, err := ReadSpec(fs.Arg(0))
	if err != nil {
		return err
	}

	sub, err := extractor.Extract(doc, extractor.Request{OperationIDs: ids})
	if err != nil {
		return err
	}

	format, err := DocumentFormat(flags.Format, sub)
	if err != nil {
		return err
	}
	data, err := sub.Marshal(format)
	if err != nil {
		return err
	}
	return WriteDocument(data, flags.Output)
}

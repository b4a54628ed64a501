package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/proposer"
	"github.com/specmend/specmend/repair"
	"github.com/specmend/specmend/validator"
)

// RepairFlags contains flags for the repair command
type RepairFlags struct {
	Rules     string
	Output    string
	Format    string
	MaxRounds int
	Timeout   time.Duration
	Model     string
	DryRun    bool
	Quiet     bool
	Verbose   bool
}

// SetupRepairFlags creates and configures a FlagSet for the repair command.
// Returns the FlagSet and a RepairFlags struct with bound flag variables.
func SetupRepairFlags() (*flag.FlagSet, *RepairFlags) {
	fs := flag.NewFlagSet("repair", flag.ContinueOnError)
	flags := &RepairFlags{}

	fs.StringVar(&flags.Rules, "rules", "", "gateway constraint file layered over the built-in defaults")
	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Format, "format", "", "document output format: yaml or json (default: same as input)")
	fs.IntVar(&flags.MaxRounds, "max-rounds", repair.DefaultMaxRounds, "repair loop round cap")
	fs.DurationVar(&flags.Timeout, "timeout", repair.DefaultProposalTimeout, "per-proposal model deadline")
	fs.StringVar(&flags.Model, "model", "", "Gemini model for the repair proposer")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "report violations and exit without invoking the model")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Verbose, "v", false, "verbose mode: log each repair round to stderr")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: specmend repair [flags] <file|->\n\n")
		Writef(fs.Output(), "Repair an OpenAPI document until it passes validation: validate, ask the\n")
		Writef(fs.Output(), "model for edits, apply them atomically, revalidate. Stops on a clean\n")
		Writef(fs.Output(), "document, after -max-rounds rounds, or after two rounds without progress.\n\n")
		Writef(fs.Output(), "Requires a Gemini API key in GEMINI_API_KEY (or SPECMEND_GEMINI_API_KEY)\n")
		Writef(fs.Output(), "unless the document is already clean.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  specmend repair openapi.yaml\n")
		Writef(fs.Output(), "  specmend repair -o repaired.yaml --rules gateway.yaml openapi.yaml\n")
		Writef(fs.Output(), "  specmend repair --max-rounds 3 --timeout 10s openapi.yaml\n")
		Writef(fs.Output(), "  cat openapi.yaml | specmend repair -q - > repaired.yaml\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Document converged (clean)\n")
		Writef(fs.Output(), "  1    Loop exhausted, aborted, or failed\n")
	}

	return fs, flags
}

// HandleRepair executes the repair command
func HandleRepair(args []string) error {
	fs, flags := SetupRepairFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("repair command requires exactly one file path or '-' for stdin")
	}
	specPath := fs.Arg(0)

	table, err := LoadRulesTable(flags.Rules)
	if err != nil {
		return err
	}
	doc, err := ReadSpec(specPath)
	if err != nil {
		return err
	}

	logger := document.Logger(document.NopLogger{})
	if flags.Verbose {
		logger = document.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := validator.New(table)

	if flags.DryRun {
		violations := v.Validate(doc)
		if !flags.Quiet {
			for _, viol := range violations {
				Writef(os.Stderr, "%s\n", viol.String())
			}
		}
		if n := validator.ErrorCount(violations); n > 0 {
			return fmt.Errorf("document needs repair: %d errors", n)
		}
		return nil
	}

	// Only stand up the model client when the document actually needs it.
	var prop repair.Proposer
	if validator.ErrorCount(v.Validate(doc)) > 0 {
		prop, err = buildProposer(ctx, flags.Model, logger)
		if err != nil {
			return err
		}
	}

	ctrl := repair.New(v, prop,
		repair.WithMaxRounds(flags.MaxRounds),
		repair.WithProposalTimeout(flags.Timeout),
		repair.WithLogger(logger),
	)
	final, report, err := ctrl.Run(ctx, doc)
	if err != nil {
		return err
	}

	format, err := DocumentFormat(flags.Format, final)
	if err != nil {
		return err
	}
	data, err := final.Marshal(format)
	if err != nil {
		return err
	}
	if err := WriteDocument(data, flags.Output); err != nil {
		return err
	}

	if !flags.Quiet {
		Writef(os.Stderr, "Outcome: %s\n", report.Outcome)
		Writef(os.Stderr, "Rounds: %d\n", report.Rounds)
		Writef(os.Stderr, "Edits Applied: %d\n", report.EditsApplied)
		for _, viol := range report.Violations {
			Writef(os.Stderr, "%s\n", viol.String())
		}
	}

	if report.Outcome != repair.OutcomeConverged {
		return fmt.Errorf("repair %s with %d remaining violations", report.Outcome, len(report.Violations))
	}
	return nil
}

// buildProposer wires the Gemini-backed proposer for the repair loop.
func buildProposer(ctx context.Context, model string, logger document.Logger) (repair.Proposer, error) {
	apiKey := os.Getenv("SPECMEND_GEMINI_API_KEY")
	var opts []proposer.GeminiOption
	if model != "" {
		opts = append(opts, proposer.WithModel(model))
	}
	opts = append(opts, proposer.WithGeminiLogger(logger))
	invoker, err := proposer.NewGeminiInvoker(ctx, apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return proposer.New(invoker, proposer.WithLogger(logger)), nil
}

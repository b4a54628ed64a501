package commands

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/specmend/specmend/internal/mcpserver"
)

// SetupMCPFlags creates and configures a FlagSet for the mcp command.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: specmend mcp\n\n")
		Writef(fs.Output(), "Start the specmend MCP server over stdio. The server exposes validate,\n")
		Writef(fs.Output(), "convert, extract, and repair tools plus repair sessions to MCP clients.\n\n")
		Writef(fs.Output(), "Configuration is via SPECMEND_* environment variables:\n")
		Writef(fs.Output(), "  SPECMEND_RULES_FILE              gateway constraint file\n")
		Writef(fs.Output(), "  SPECMEND_VALIDATE_NO_WARNINGS    suppress warnings by default\n")
		Writef(fs.Output(), "  SPECMEND_MAX_ROUNDS              repair loop round cap (default 10)\n")
		Writef(fs.Output(), "  SPECMEND_PROPOSAL_TIMEOUT        per-proposal deadline (default 30s)\n")
		Writef(fs.Output(), "  SPECMEND_GEMINI_API_KEY          API key for the repair proposer\n")
		Writef(fs.Output(), "  SPECMEND_GEMINI_MODEL            Gemini model override\n")
	}
	return fs
}

// HandleMCP executes the mcp command, blocking until the client
// disconnects or the process is signalled.
func HandleMCP(args []string) error {
	fs := SetupMCPFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}

package main

import (
	"fmt"
	"os"

	"github.com/specmend/specmend"
	"github.com/specmend/specmend/cmd/specmend/commands"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("specmend v%s\n", specmend.Version())
	case "help", "-h", "--help":
		printUsage()
	case "validate":
		if err := commands.HandleValidate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "repair":
		if err := commands.HandleRepair(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "convert":
		if err := commands.HandleConvert(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "extract":
		if err := commands.HandleExtract(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := commands.HandleMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`specmend v%s - OpenAPI validation and repair for gateway publication

Usage: specmend <command> [flags] [arguments]

Commands:
  validate    Validate a document against OpenAPI 3.0 structure and gateway rules
  convert     Normalize a document to OpenAPI 3.0.3
  repair      Iteratively repair a document with model-proposed edits
  extract     Extract named operations and their reference closure
  mcp         Start the MCP server over stdio
  version     Print the version
  help        Show this help

Run 'specmend <command> -h' for command-specific flags.
`, specmend.Version())
}

// Package app implements the tickerwire CLI: one subcommand per
// enrichment engine, a combined run-once pass, a long-running watch
// scheduler, and the read API server.
package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "sync":
		return runSync(args[1:])
	case "discover":
		return runDiscover(args[1:])
	case "thumbs":
		return runThumbs(args[1:])
	case "process", "run-once":
		return runProcess(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "tickerwire CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  tickerwire <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  sync      Pull events and markets from the trading API")
	fmt.Fprintln(os.Stderr, "  discover  Find and link news articles for keyworded events")
	fmt.Fprintln(os.Stderr, "  thumbs    Backfill thumbnails for recent articles")
	fmt.Fprintln(os.Stderr, "  process   Run sync + discover + thumbs in sequence")
	fmt.Fprintln(os.Stderr, "  run-once  Alias for process")
	fmt.Fprintln(os.Stderr, "  watch     Run all three engines on independent schedules")
	fmt.Fprintln(os.Stderr, "  serve     Start the read API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"tickerwire <command> -h\" for command-specific flags.")
}

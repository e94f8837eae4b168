// ============================================================================
// Eventphase CLI - Main Entry Point
// ============================================================================
//
// File: cmd/eventctl/main.go
// Purpose: Application entry point. Grounded on the teacher's
// cmd/queue/main.go: build-time version injection via ldflags, a
// top-level panic recovery, and unified command-execution error
// handling.
//
// Usage:
//   ./eventctl --help
//   ./eventctl dispatch --event-type demo.order
//   ./eventctl serve
//   ./eventctl status
//
// ============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/eventphase/internal/cli"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	rootCmd := cli.BuildCLI()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

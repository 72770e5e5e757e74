// Package main provides the entry point for the pagetree CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pagetree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagetree",
		Short: "Breadth-first website crawler with hierarchical content storage",
		Long: `Pagetree crawls a website breadth-first from a seed URL and stores every
HTML page it accepts in a local SQLite database. The text content of each
page is broken into a hierarchy of structural elements (headings,
paragraphs, lists, tables) addressed by dot-delimited sequence paths, so
the stored data preserves both reading order and nesting.

Crawls are polite by default: one request at a time, a fixed delay
between requests to the same host, and bounded depth and page budgets.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewPagesCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yuseiito/pagetree/internal/config"
	"github.com/yuseiito/pagetree/internal/database"
)

// NewPagesCmd creates the pages command.
func NewPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List crawled pages stored in the database",
		Long: `Pages lists the pages persisted by earlier crawl runs.

Without flags it lists every stored page, newest first. Use --session to
restrict the listing to one crawl session, --sessions to list the known
sessions, and --page to print the content hierarchy of a single page.

Examples:
  # List all stored pages
  pagetree pages

  # List the known crawl sessions
  pagetree pages --sessions

  # List the pages of one session
  pagetree pages -s 4f7c9a2e-...

  # Print the content hierarchy of page 12
  pagetree pages --page 12`,
		Args: cobra.NoArgs,
		RunE: runPagesCmd,
	}

	cmd.Flags().StringP("session", "s", "",
		"Restrict the listing to one crawl session")
	cmd.Flags().Bool("sessions", false,
		"List crawl sessions instead of pages")
	cmd.Flags().Int64("page", 0,
		"Print the content hierarchy of the page with this ID")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database")

	return cmd
}

// runPagesCmd executes the pages command.
func runPagesCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	session, err := cmd.Flags().GetString("session")
	if err != nil {
		return err
	}
	listSessions, err := cmd.Flags().GetBool("sessions")
	if err != nil {
		return err
	}
	pageID, err := cmd.Flags().GetInt64("page")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no crawl database found (run 'pagetree crawl' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	switch {
	case listSessions:
		return printSessions(cmd, db)
	case pageID > 0:
		return printContentTree(cmd, db, pageID)
	default:
		rows, err := db.ListPages(ctx, session)
		if err != nil {
			return err
		}
		return printPages(cmd, rows)
	}
}

// printSessions lists the known crawl sessions.
func printSessions(cmd *cobra.Command, db *database.DB) error {
	sessions, err := db.Sessions(cmd.Context())
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl sessions found.")
		return nil
	}

	for _, s := range sessions {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}

// printPages renders the page listing as an aligned table.
func printPages(cmd *cobra.Command, rows []database.PageRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pages found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tNODES\tCRAWLED\tTITLE\tURL")
	for _, row := range rows {
		title := row.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\n",
			row.ID,
			row.StatusCode,
			row.NodeCount,
			row.CrawledAt.Format("2006-01-02 15:04"),
			title,
			row.URL,
		)
	}
	return w.Flush()
}

// printContentTree prints a page's content nodes indented by level.
func printContentTree(cmd *cobra.Command, db *database.DB, pageID int64) error {
	nodes, err := db.ContentNodes(cmd.Context(), pageID)
	if err != nil {
		return err
	}

	if len(nodes) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No content nodes for page %d.\n", pageID)
		return nil
	}

	for _, n := range nodes {
		text := n.Text
		if len(text) > 80 {
			text = text[:77] + "..."
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s <%s> %s\n",
			strings.Repeat("  ", n.Level), n.SequencePath, n.TagType, text)
	}
	return nil
}

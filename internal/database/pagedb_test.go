package database

import (
	"context"
	"testing"
	"time"

	"github.com/yuseiito/pagetree/internal/model"
)

// openTestDB opens a fresh database in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

func samplePage() *model.Page {
	return &model.Page{
		Session:      "session-1",
		URL:          "https://example.com/",
		Title:        "Example",
		StatusCode:   200,
		ContentType:  "text/html",
		LastModified: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		CrawledAt:    time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
	}
}

func sampleNodes() []model.ContentNode {
	return []model.ContentNode{
		{TagType: "h1", SequencePath: "1", Level: 0, Text: "Example"},
		{TagType: "div", SequencePath: "2", Level: 0, Text: "Hello World"},
		{TagType: "p", SequencePath: "2.1", Level: 1, Text: "Hello World"},
	}
}

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file and schema", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		if db.Path() == "" {
			t.Error("expected a database path")
		}

		// Schema is usable right away.
		if _, err := db.SavePage(context.Background(), samplePage(), nil); err != nil {
			t.Fatalf("expected fresh schema to accept a page, got %v", err)
		}
	})

	t.Run("refuses missing database when creation is disabled", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database file")
		}
	})
}

// TestSavePage tests the atomic page-plus-content commit.
func TestSavePage(t *testing.T) {
	t.Parallel()

	t.Run("persists page and all content nodes", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		pageID, err := db.SavePage(ctx, samplePage(), sampleNodes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pageID <= 0 {
			t.Fatalf("expected a positive page ID, got %d", pageID)
		}

		nodes, err := db.ContentNodes(ctx, pageID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(nodes) != 3 {
			t.Fatalf("expected 3 content nodes, got %d", len(nodes))
		}
		for i, n := range nodes {
			if n.PageID != pageID {
				t.Errorf("node %d: expected page ID %d, got %d", i, pageID, n.PageID)
			}
		}
		if nodes[2].SequencePath != "2.1" || nodes[2].Level != 1 {
			t.Errorf("expected pre-order to survive round trip, got %+v", nodes[2])
		}
	})

	t.Run("rolls back the page when a node insert fails", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		// A negative level violates the schema check on the last node, after
		// the page row and two node rows are already in the transaction.
		bad := sampleNodes()
		bad = append(bad, model.ContentNode{TagType: "p", SequencePath: "3", Level: -1, Text: "x"})

		if _, err := db.SavePage(ctx, samplePage(), bad); err == nil {
			t.Fatal("expected error from invalid content node")
		}

		pages, nodes, err := db.SessionStats(ctx, "session-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pages != 0 || nodes != 0 {
			t.Errorf("expected full rollback, found %d pages and %d nodes", pages, nodes)
		}
	})

	t.Run("duplicate sequence path within one page fails", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		nodes := []model.ContentNode{
			{TagType: "p", SequencePath: "1", Level: 0, Text: "a"},
			{TagType: "p", SequencePath: "1", Level: 0, Text: "b"},
		}
		if _, err := db.SavePage(context.Background(), samplePage(), nodes); err == nil {
			t.Error("expected unique constraint violation")
		}
	})

	t.Run("empty optional fields are stored as NULL", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		page := samplePage()
		page.Title = ""
		page.ContentType = ""
		page.LastModified = time.Time{}

		if _, err := db.SavePage(ctx, page, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rows, err := db.ListPages(ctx, page.Session)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 page, got %d", len(rows))
		}
		if rows[0].Title != "" || rows[0].ContentType != "" || rows[0].LastModified != "" {
			t.Errorf("expected empty optional fields to read back empty, got %+v", rows[0])
		}
	})

	t.Run("page without content nodes is valid", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		pageID, err := db.SavePage(ctx, samplePage(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		nodes, err := db.ContentNodes(ctx, pageID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(nodes) != 0 {
			t.Errorf("expected no nodes, got %d", len(nodes))
		}
	})
}

// TestQueries tests the read side used by reports and the pages command.
func TestQueries(t *testing.T) {
	t.Parallel()

	t.Run("list pages filters by session", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		p1 := samplePage()
		p2 := samplePage()
		p2.Session = "session-2"
		p2.URL = "https://example.org/"

		if _, err := db.SavePage(ctx, p1, sampleNodes()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := db.SavePage(ctx, p2, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		all, err := db.ListPages(ctx, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(all))
		}

		one, err := db.ListPages(ctx, "session-2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(one) != 1 || one[0].URL != "https://example.org/" {
			t.Fatalf("expected only the session-2 page, got %+v", one)
		}
		if one[0].NodeCount != 0 {
			t.Errorf("expected 0 nodes for session-2 page, got %d", one[0].NodeCount)
		}
	})

	t.Run("session stats count pages and nodes", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		p1 := samplePage()
		p2 := samplePage()
		p2.URL = "https://example.com/a"

		if _, err := db.SavePage(ctx, p1, sampleNodes()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := db.SavePage(ctx, p2, sampleNodes()[:1]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		pages, nodes, err := db.SessionStats(ctx, "session-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pages != 2 || nodes != 4 {
			t.Errorf("expected 2 pages and 4 nodes, got %d and %d", pages, nodes)
		}
	})

	t.Run("sessions lists newest first", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		p1 := samplePage()
		p2 := samplePage()
		p2.Session = "session-2"

		if _, err := db.SavePage(ctx, p1, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := db.SavePage(ctx, p2, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sessions, err := db.Sessions(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sessions) != 2 || sessions[0] != "session-2" || sessions[1] != "session-1" {
			t.Errorf("expected [session-2 session-1], got %v", sessions)
		}
	})
}

// TestParseTimestamp tests stored timestamp parsing.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "RFC3339", input: "2024-03-02T09:30:00Z", zero: false},
		{name: "SQLite default", input: "2024-03-02 09:30:00", zero: false},
		{name: "garbage", input: "not a time", zero: true},
		{name: "empty", input: "", zero: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero expectation %v", tt.input, got, tt.zero)
			}
		})
	}
}

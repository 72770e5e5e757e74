package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yuseiito/pagetree/internal/model"
)

// DBFileName is the SQLite database file name inside the data directory.
const DBFileName = "pagetree.db"

// DB provides SQLite-based storage for crawled pages and content nodes.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if absent.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: readers (the
	// pages subcommand) can then run while a crawl is writing.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database at dir/pagetree.db.
func Open(dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; a larger pool only creates lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pdb := &DB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := pdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pdb, nil
}

// Close closes the database connection.
func (pdb *DB) Close() error {
	return pdb.db.Close()
}

// Path returns the database file path.
func (pdb *DB) Path() string {
	return pdb.dbPath
}

// createTables creates the schema if it doesn't exist.
func (pdb *DB) createTables() error {
	schema := `
	-- One row per fetched and accepted page. Optional response metadata
	-- stays NULL when unknown; empty strings are never stored for it.
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		status_code INTEGER NOT NULL,
		content_type TEXT,
		last_modified TEXT,
		crawled_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);

	-- One row per content node. The sequence path is unique per page and
	-- its segment count always equals level + 1.
	CREATE TABLE IF NOT EXISTS contents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		tag_type TEXT NOT NULL,
		sequence_path TEXT NOT NULL,
		level INTEGER NOT NULL CHECK (level >= 0),
		text TEXT NOT NULL,
		UNIQUE(page_id, sequence_path)
	);

	CREATE INDEX IF NOT EXISTS idx_contents_page ON contents(page_id);
	`

	_, err := pdb.db.ExecContext(context.Background(), schema)
	return err
}

// SavePage commits one page and its whole content hierarchy atomically.
// The page row is inserted first to obtain its identity, the identity is
// attached to every node, and the batch insert runs in the same
// transaction. Any failure rolls everything back and returns the error;
// a partially persisted page cannot be observed.
func (pdb *DB) SavePage(ctx context.Context, page *model.Page, nodes []model.ContentNode) (int64, error) {
	tx, err := pdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	crawledAt := page.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = time.Now()
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO pages (session, url, title, status_code, content_type, last_modified, crawled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		page.Session,
		page.URL,
		nullString(page.Title),
		page.StatusCode,
		nullString(page.ContentType),
		nullTime(page.LastModified),
		crawledAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page %s: %w", page.URL, err)
	}

	pageID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read page identity: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO contents (page_id, tag_type, sequence_path, level, text)
	VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare content insert: %w", err)
	}
	defer stmt.Close()

	for _, node := range nodes {
		if _, err := stmt.ExecContext(ctx, pageID, node.TagType, node.SequencePath, node.Level, node.Text); err != nil {
			return 0, fmt.Errorf("failed to insert content node %s of %s: %w",
				node.SequencePath, page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit page %s: %w", page.URL, err)
	}

	return pageID, nil
}

// PageRow is a stored page as read back from the database.
type PageRow struct {
	ID           int64
	Session      string
	URL          string
	Title        string
	StatusCode   int
	ContentType  string
	LastModified string
	CrawledAt    time.Time
	NodeCount    int
}

// ListPages returns stored pages, optionally filtered by session
// (empty session means all), newest first.
func (pdb *DB) ListPages(ctx context.Context, session string) ([]PageRow, error) {
	query := `
	SELECT p.id, p.session, p.url, p.title, p.status_code, p.content_type,
	       p.last_modified, p.crawled_at, COUNT(c.id)
	FROM pages p
	LEFT JOIN contents c ON c.page_id = p.id
	`
	args := make([]any, 0, 1)
	if session != "" {
		query += " WHERE p.session = ?"
		args = append(args, session)
	}
	query += " GROUP BY p.id ORDER BY p.id DESC"

	rows, err := pdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var results []PageRow
	for rows.Next() {
		var row PageRow
		var title, contentType, lastModified sql.NullString
		var crawledAt string

		if err := rows.Scan(&row.ID, &row.Session, &row.URL, &title, &row.StatusCode,
			&contentType, &lastModified, &crawledAt, &row.NodeCount); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}

		row.Title = title.String
		row.ContentType = contentType.String
		row.LastModified = lastModified.String
		row.CrawledAt = parseTimestamp(crawledAt)
		results = append(results, row)
	}

	return results, rows.Err()
}

// ContentNodes returns the content hierarchy of a page in document order
// (insertion order equals pre-order, so the generated identity sorts it).
func (pdb *DB) ContentNodes(ctx context.Context, pageID int64) ([]model.ContentNode, error) {
	rows, err := pdb.db.QueryContext(ctx, `
	SELECT page_id, tag_type, sequence_path, level, text
	FROM contents
	WHERE page_id = ?
	ORDER BY id`, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query content nodes: %w", err)
	}
	defer rows.Close()

	var nodes []model.ContentNode
	for rows.Next() {
		var n model.ContentNode
		if err := rows.Scan(&n.PageID, &n.TagType, &n.SequencePath, &n.Level, &n.Text); err != nil {
			return nil, fmt.Errorf("failed to scan content node: %w", err)
		}
		nodes = append(nodes, n)
	}

	return nodes, rows.Err()
}

// SessionStats returns the persisted page and content node counts for a
// crawl session.
func (pdb *DB) SessionStats(ctx context.Context, session string) (pages, nodes int, err error) {
	err = pdb.db.QueryRowContext(ctx, `
	SELECT COUNT(DISTINCT p.id), COUNT(c.id)
	FROM pages p
	LEFT JOIN contents c ON c.page_id = p.id
	WHERE p.session = ?`, session).Scan(&pages, &nodes)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read session stats: %w", err)
	}
	return pages, nodes, nil
}

// Sessions lists distinct crawl sessions, newest first.
func (pdb *DB) Sessions(ctx context.Context) ([]string, error) {
	rows, err := pdb.db.QueryContext(ctx, `
	SELECT session FROM pages GROUP BY session ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// nullString maps "" to NULL, preserving the unknown/empty distinction
// the schema promises.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime maps the zero time to NULL.
func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// timestampFormats are the timestamp layouts SQLite may hand back,
// most specific first.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp parses a stored timestamp, returning the zero time when
// no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

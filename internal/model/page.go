package model

import "time"

// Page represents one fetched and accepted page, ready to be persisted.
// It is built once by the crawl engine from the fetch and extraction
// results and never mutated afterwards; the database package owns it
// from the moment it is handed to SavePage.
type Page struct {
	// Session identifies the crawl run this page belongs to.
	// Several crawls can share one database; the session keeps them apart.
	Session string

	// URL is the original, non-normalized URL that was fetched.
	// Normalization is a frontier concern and never leaks into storage.
	URL string

	// Title is the page title from the <title> element.
	// Empty means no title was found; it is stored as NULL, not "".
	Title string

	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the declared MIME type of the response.
	// Empty means the server sent no Content-Type header.
	ContentType string

	// LastModified is the parsed Last-Modified response header.
	// The zero value means the header was absent or unparseable.
	LastModified time.Time

	// CrawledAt is when the page was fetched.
	CrawledAt time.Time
}

// HasLastModified reports whether the page carries a Last-Modified value.
func (p *Page) HasLastModified() bool {
	return !p.LastModified.IsZero()
}

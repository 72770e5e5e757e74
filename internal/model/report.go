package model

import (
	"time"

	"github.com/google/uuid"
)

// CrawlReport accumulates the outcome of one crawl run (one seed URL).
// The pipeline steps fill it in as they execute; the report writers and
// the database summary read from it afterwards.
type CrawlReport struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Session is the unique identifier of this crawl run. It is stamped on
	// every persisted page row so runs sharing a database stay separable.
	Session string `json:"session"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl duration.
	Elapsed time.Duration `json:"elapsed"`

	// PagesCrawled counts pages fetched, accepted, and persisted.
	PagesCrawled int `json:"pages_crawled"`

	// PagesRejected counts definitive skips: non-success status or
	// non-HTML content type.
	PagesRejected int `json:"pages_rejected"`

	// PagesFailed counts transport-level fetch failures. They are dropped
	// without retry, same as rejections, but tracked separately.
	PagesFailed int `json:"pages_failed"`

	// ContentNodes counts persisted content rows across all pages.
	ContentNodes int `json:"content_nodes"`

	// LinksDiscovered counts outbound links seen by the extractor,
	// before frontier deduplication.
	LinksDiscovered int `json:"links_discovered"`

	// PersistedPages and PersistedNodes are the row counts read back from
	// the store after the crawl. They cross-check the engine counters.
	PersistedPages int `json:"persisted_pages"`
	PersistedNodes int `json:"persisted_nodes"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Cancelled is set when the crawl was stopped by context cancellation
	// before the frontier drained.
	Cancelled bool `json:"cancelled,omitempty"`

	// Error holds the first fatal pipeline error, if any.
	Error error `json:"-"`

	// ErrorMessage mirrors Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates a report for the given seed with a fresh session ID.
func NewCrawlReport(seed string) *CrawlReport {
	return &CrawlReport{
		Seed:      seed,
		Session:   uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Succeeded reports whether the crawl completed without a fatal error.
func (r *CrawlReport) Succeeded() bool {
	return r.Error == nil && !r.Cancelled
}

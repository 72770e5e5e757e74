package model

import (
	"errors"
	"testing"
)

// TestNewCrawlReport tests report construction.
func TestNewCrawlReport(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport("https://example.com")

	if r.Seed != "https://example.com" {
		t.Errorf("unexpected seed: %q", r.Seed)
	}
	if r.Session == "" {
		t.Error("expected a session ID to be assigned")
	}
	if r.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}

	// Two reports must never share a session.
	other := NewCrawlReport("https://example.com")
	if other.Session == r.Session {
		t.Error("expected distinct session IDs for distinct reports")
	}
}

// TestCrawlReportSucceeded tests success classification.
func TestCrawlReportSucceeded(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport("https://example.com")
	if !r.Succeeded() {
		t.Error("fresh report should count as succeeded")
	}

	r.Error = errors.New("boom")
	if r.Succeeded() {
		t.Error("report with error should not count as succeeded")
	}

	r.Error = nil
	r.Cancelled = true
	if r.Succeeded() {
		t.Error("cancelled report should not count as succeeded")
	}
}

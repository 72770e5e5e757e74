// Package crawler implements the breadth-first crawl core of pagetree.
//
// # Components
//
//   - Frontier: FIFO work queue plus the set of already-seen URLs,
//     deduplicated on a normalized key
//   - Fetcher: retrieves a URL and classifies the response as crawlable
//     HTML, rejected, or failed
//   - Extractor: turns raw HTML into outbound links and an ordered
//     hierarchy of content nodes
//   - Engine: drives the pop/fetch/extract/persist/expand loop against a
//     PageSink
//
// The Engine is strictly sequential: one fetch-extract-persist cycle
// finishes, including the per-host politeness delay, before the next
// begins. The Frontier still serializes its check-and-insert so the same
// code is safe if callers ever feed it from several goroutines.
//
// # Error handling
//
// A fetch ends in one of three ways. Success carries a FetchResult.
// Rejection (non-success status or non-HTML content type) is a definitive
// classification, reported through ErrRejectedStatus or
// ErrRejectedContentType and never retried. Transport failure (DNS,
// timeout, reset) is any other error; it is dropped without retry as
// well, but the two classes stay distinguishable so a retry policy could
// be bolted on for failures only.
package crawler

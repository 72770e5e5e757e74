package crawler

import (
	"net/url"
	"strings"
	"sync"
)

// Entry is one unit of crawl work: a URL and the depth it was discovered at.
// Entries are created on discovery, consumed exactly once, never mutated.
type Entry struct {
	// URL is the original, non-normalized URL. This is what gets fetched
	// and stored; normalization exists only for deduplication.
	URL string

	// Depth is the BFS depth: 0 for the seed, parent depth + 1 for links.
	Depth int
}

// Frontier owns the set of discovered URLs and the traversal order.
// The queue is strict FIFO, which yields breadth-first order as long as
// links are pushed at parent depth + 1. The seen set grows monotonically;
// nothing is ever removed from it.
type Frontier struct {
	// mu serializes the seen-set check-and-insert so two producers can
	// never both enqueue the same normalized URL.
	mu    sync.Mutex
	queue []Entry
	seen  map[string]bool
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queue: make([]Entry, 0),
		seen:  make(map[string]bool),
	}
}

// Push enqueues a candidate URL at the given depth. URLs whose normalized
// key has been seen before are dropped; the return value reports whether
// the entry was actually enqueued.
func (f *Frontier) Push(rawURL string, depth int) bool {
	key := NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	f.queue = append(f.queue, Entry{URL: rawURL, Depth: depth})
	return true
}

// Pop dequeues the oldest entry. The second return value is false when the
// frontier is empty.
func (f *Frontier) Pop() (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return Entry{}, false
	}
	e := f.queue[0]
	f.queue = f.queue[1:]
	return e, true
}

// MarkSeen records a URL's normalized key without enqueuing anything and
// reports whether the key was newly seen. Test and insert happen under one
// lock acquisition, so concurrent callers cannot both observe "new".
func (f *Frontier) MarkSeen(rawURL string) bool {
	key := NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// SeenCount returns the number of distinct normalized URLs encountered.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// NormalizeURL derives the deduplication key for a URL: lowercase scheme,
// authority, and path, with query string and fragment discarded. Two URLs
// differing only in case or query/fragment share one frontier key, but the
// original string is what gets fetched.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil

	return strings.ToLower(u.Scheme + "://" + u.Host + u.Path)
}

package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/yuseiito/pagetree/internal/model"
)

// PageSink persists one page together with its whole content hierarchy as
// a single atomic unit. The generated page identity is attached to the
// nodes inside the sink's transaction, never by the engine.
type PageSink interface {
	SavePage(ctx context.Context, page *model.Page, nodes []model.ContentNode) (int64, error)
}

// Stats summarizes one engine run.
type Stats struct {
	// PagesCrawled counts pages fetched, extracted, and persisted.
	PagesCrawled int

	// PagesRejected counts definitive skips (status or content type).
	PagesRejected int

	// PagesFailed counts transport failures and broken parses.
	PagesFailed int

	// ContentNodes counts persisted content nodes across all pages.
	ContentNodes int

	// LinksDiscovered counts extracted links before deduplication.
	LinksDiscovered int
}

// Engine drives the crawl loop: pop an entry from the frontier, fetch it,
// extract links and content, persist the page, and expand depth-permitted
// links. The loop is strictly sequential; one cycle completes, including
// the politeness wait, before the next begins.
type Engine struct {
	fetcher *Fetcher
	sink    PageSink

	// maxDepth is the expansion ceiling: links found on a page are pushed
	// only while the page's depth is strictly below it. Pages at the
	// ceiling are still fetched and persisted, just not expanded.
	maxDepth int

	// maxPages stops new dequeues once this many pages were persisted.
	maxPages int

	// limiter spaces requests per host.
	limiter *HostLimiter

	// sameHost restricts expansion to links on the seed's host.
	sameHost bool

	// session is stamped on every persisted page.
	session string

	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDepth sets the expansion ceiling.
func WithDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithPageBudget sets the maximum number of pages to persist.
func WithPageBudget(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithPoliteDelay sets the per-host delay between requests.
func WithPoliteDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.limiter = NewHostLimiter(d)
	}
}

// WithSameHost restricts expansion to the seed's host.
func WithSameHost(same bool) EngineOption {
	return func(e *Engine) {
		e.sameHost = same
	}
}

// WithSession sets the crawl session ID stamped on pages.
func WithSession(session string) EngineOption {
	return func(e *Engine) {
		e.session = session
	}
}

// WithEngineLogger sets a custom logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine writing pages to sink.
func NewEngine(fetcher *Fetcher, sink PageSink, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:  fetcher,
		sink:     sink,
		maxDepth: 2,
		maxPages: 100,
		limiter:  NewHostLimiter(time.Second),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Run crawls breadth-first from seedURL until the frontier drains, the
// page budget is spent, or the context is cancelled. Per-page failures are
// logged with the offending URL and the loop continues; only cancellation
// and an invalid seed surface as errors.
func (e *Engine) Run(ctx context.Context, seedURL string) (Stats, error) {
	var stats Stats

	seed, err := url.Parse(seedURL)
	if err != nil {
		return stats, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	if seed.Scheme != "http" && seed.Scheme != "https" {
		return stats, fmt.Errorf("invalid seed URL %q: scheme must be http or https", seedURL)
	}

	frontier := NewFrontier()
	frontier.Push(seedURL, 0)

	for stats.PagesCrawled < e.maxPages {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		entry, ok := frontier.Pop()
		if !ok {
			break
		}

		if err := e.limiter.Wait(ctx, hostOf(entry.URL)); err != nil {
			return stats, err
		}

		parsed, result, err := e.fetchAndExtract(ctx, entry.URL)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if IsRejected(err) {
				stats.PagesRejected++
				e.logger.Debug("page rejected", "url", entry.URL, "depth", entry.Depth, "error", err)
			} else {
				stats.PagesFailed++
				e.logger.Warn("page failed", "url", entry.URL, "depth", entry.Depth, "error", err)
			}
			continue
		}

		page := &model.Page{
			Session:      e.session,
			URL:          entry.URL,
			Title:        parsed.Title,
			StatusCode:   result.StatusCode,
			ContentType:  result.ContentType,
			LastModified: result.LastModified,
			CrawledAt:    time.Now(),
		}

		if _, err := e.sink.SavePage(ctx, page, parsed.Nodes); err != nil {
			// The sink guarantees rollback, so nothing partial exists for
			// this page; the crawl moves on.
			stats.PagesFailed++
			e.logger.Error("persist failed", "url", entry.URL, "error", err)
			continue
		}

		stats.PagesCrawled++
		stats.ContentNodes += len(parsed.Nodes)
		stats.LinksDiscovered += len(parsed.Links)

		e.logger.Debug("page persisted",
			"url", entry.URL,
			"depth", entry.Depth,
			"nodes", len(parsed.Nodes),
			"links", len(parsed.Links),
		)

		if entry.Depth < e.maxDepth {
			for _, link := range parsed.Links {
				if e.sameHost && !strings.EqualFold(hostOf(link), seed.Host) {
					continue
				}
				frontier.Push(link, entry.Depth+1)
			}
		}
	}

	return stats, nil
}

// fetchAndExtract retrieves one URL and parses it. Both halves share the
// error taxonomy: rejections pass through unchanged, everything else is a
// failure.
func (e *Engine) fetchAndExtract(ctx context.Context, pageURL string) (*ExtractResult, *FetchResult, error) {
	result, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	extractor, err := NewExtractor(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse base URL %s: %w", pageURL, err)
	}

	parsed, err := extractor.Extract(bytes.NewReader(result.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse body of %s: %w", pageURL, err)
	}

	return parsed, result, nil
}

// hostOf returns the host of a URL, or "" when it does not parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/yuseiito/pagetree/internal/config"
	"github.com/yuseiito/pagetree/internal/crawler"
	"github.com/yuseiito/pagetree/internal/database"
	"github.com/yuseiito/pagetree/internal/model"
)

// CrawlStep runs the breadth-first crawl for the report's seed and writes
// accepted pages into the sink.
type CrawlStep struct {
	// client is the HTTP client used for all fetches.
	client *http.Client

	// sink receives every accepted page atomically.
	sink crawler.PageSink

	// cfg carries depth, budget, delay, and fetch limits.
	cfg *config.Config

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates the crawl step. A nil client gets a default client
// with the configured timeout.
func NewCrawlStep(client *http.Client, sink crawler.PageSink, cfg *config.Config, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client: client,
		sink:   sink,
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{Timeout: cfg.Timeout}
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl and copies the engine counters into the report.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	cfg := *s.cfg
	if u, err := url.Parse(report.Seed); err == nil && u.Host != "" {
		cfg = s.cfg.ForSeed(u.Host)
	}

	fetcher := crawler.NewFetcher(
		s.client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	)

	engine := crawler.NewEngine(
		fetcher,
		s.sink,
		crawler.WithDepth(cfg.MaxDepth),
		crawler.WithPageBudget(cfg.MaxPages),
		crawler.WithPoliteDelay(cfg.Delay),
		crawler.WithSameHost(cfg.SameHostOnly),
		crawler.WithSession(report.Session),
		crawler.WithEngineLogger(s.logger),
	)

	start := time.Now()
	stats, err := engine.Run(ctx, report.Seed)
	report.Elapsed = time.Since(start)

	report.PagesCrawled = stats.PagesCrawled
	report.PagesRejected = stats.PagesRejected
	report.PagesFailed = stats.PagesFailed
	report.ContentNodes = stats.ContentNodes
	report.LinksDiscovered = stats.LinksDiscovered

	if err != nil {
		if ctx.Err() != nil {
			report.Cancelled = true
		}
		return err
	}

	return nil
}

// SummarizeStep reads the persisted row counts back from the database so
// the report shows what actually committed, not just what the engine
// counted.
type SummarizeStep struct {
	db *database.DB

	logger *slog.Logger
}

// SummarizeStepOption configures a SummarizeStep.
type SummarizeStepOption func(*SummarizeStep)

// WithSummarizeLogger sets a custom logger for the summary step.
func WithSummarizeLogger(logger *slog.Logger) SummarizeStepOption {
	return func(s *SummarizeStep) {
		s.logger = logger
	}
}

// NewSummarizeStep creates the summary step.
func NewSummarizeStep(db *database.DB, opts ...SummarizeStepOption) *SummarizeStep {
	s := &SummarizeStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do reads the session's persisted counts into the report.
func (s *SummarizeStep) Do(ctx context.Context, report *model.CrawlReport) error {
	pages, nodes, err := s.db.SessionStats(ctx, report.Session)
	if err != nil {
		return err
	}

	report.PersistedPages = pages
	report.PersistedNodes = nodes

	if pages != report.PagesCrawled {
		s.logger.Warn("persisted page count differs from crawl count",
			"session", report.Session,
			"crawled", report.PagesCrawled,
			"persisted", pages,
		)
	}

	return nil
}

// DefaultPipeline builds the standard crawl-then-summarize pipeline used
// by the CLI.
func DefaultPipeline(client *http.Client, db *database.DB, cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := New(WithLogger(logger))
	p.AddSteps(
		NewCrawlStep(client, db, cfg, WithCrawlLogger(logger)),
		NewSummarizeStep(db, WithSummarizeLogger(logger)),
	)
	return p
}

package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The defaults keep a crawl polite and
// bounded: shallow depth, a small page budget, and a one-second delay.
const (
	// DefaultMaxDepth is the expansion ceiling. Links found on a page are
	// followed only while the page's own depth is strictly below this value,
	// so with the default of 2 pages are fetched at depths 0, 1, and 2 and
	// nothing deeper is ever enqueued.
	DefaultMaxDepth = 2

	// DefaultMaxPages bounds the total number of pages fetched per seed.
	// This is the overall crawl budget; when it is spent the frontier stops
	// dequeuing and whatever is in flight is allowed to finish.
	DefaultMaxPages = 100

	// DefaultDelay is the politeness delay between requests to the same host.
	// One second is conservative; lower values risk hammering small sites.
	DefaultDelay = 1 * time.Second

	// DefaultTimeout is the per-request connection timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies pagetree in HTTP requests. A descriptive
	// agent string lets site operators recognize crawler traffic in logs.
	DefaultUserAgent = "pagetree/1.0 (+https://github.com/yuseiito/pagetree)"

	// DefaultMaxBodySize caps how much of a response body is read.
	// 5MB covers any realistic HTML page while bounding memory use.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is used for XDG directory paths.
	AppName = "pagetree"
)

// Config holds all options for a crawl run. It is built from CLI flags,
// validated once up front, and passed explicitly through the application
// rather than read from globals.
type Config struct {
	// Seeds is the list of start URLs, one crawl session each.
	Seeds []string

	// MaxDepth is the expansion ceiling (see DefaultMaxDepth).
	MaxDepth int

	// MaxPages is the page budget per seed.
	MaxPages int

	// Delay is the per-host politeness delay between requests.
	Delay time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the response body read limit in bytes.
	MaxBodySize int64

	// SameHostOnly restricts the frontier to links on the seed's host.
	SameHostOnly bool

	// Batch is the number of seeds crawled concurrently. Each individual
	// crawl stays sequential; only distinct seeds run in parallel.
	Batch int

	// DBDir is the directory holding the SQLite database. Defaults to the
	// XDG data directory for pagetree.
	DBDir string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport and MarkdownReport select the report format. They are
	// mutually exclusive; the default is a plain text summary.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile, when set, receives the report instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit .pagetree file location. Empty means
	// search the working directory and then the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File
}

// NewConfig returns a Config populated with the documented defaults.
// Non-zero defaults (timeouts, budgets, the user agent) make the zero
// value unusable, so construction goes through here.
func NewConfig() *Config {
	return &Config{
		MaxDepth:    DefaultMaxDepth,
		MaxPages:    DefaultMaxPages,
		Delay:       DefaultDelay,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		Batch:       1,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for pagetree
// (~/.local/share/pagetree on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagetree
// (~/.config/pagetree on Linux).
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found
// as one of the package sentinel errors.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Batch <= 0 {
		return ErrInvalidBatch
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ForSeed returns a copy of the config with any per-site overrides from the
// config file applied for the given seed host.
func (c *Config) ForSeed(host string) Config {
	out := *c
	if c.SiteConfigs == nil {
		return out
	}
	site := c.SiteConfigs.GetSiteConfig(host)
	if site.Depth > 0 {
		out.MaxDepth = site.Depth
	}
	if site.MaxPages > 0 {
		out.MaxPages = site.MaxPages
	}
	if site.UserAgent != "" {
		out.UserAgent = site.UserAgent
	}
	return out
}

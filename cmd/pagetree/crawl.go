package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/yuseiito/pagetree/internal/config"
	"github.com/yuseiito/pagetree/internal/database"
	"github.com/yuseiito/pagetree/internal/log"
	"github.com/yuseiito/pagetree/internal/model"
	"github.com/yuseiito/pagetree/internal/pipeline"
	"github.com/yuseiito/pagetree/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl a website breadth-first and store its content",
		Long: `Crawl fetches pages breadth-first from one or more seed URLs and stores
each accepted page, together with its hierarchical text content, in the
local SQLite database.

Pages are accepted only when the server answers with a success status and
an HTML content type; everything else is skipped without retry. Links are
followed while the linking page sits strictly below the depth ceiling, so
the default depth of 2 fetches the seed, its links, and their links.

When no URL is given, the seed is prompted for interactively.

Examples:
  # Crawl a single site with defaults (depth 2, 100 pages, 1s delay)
  pagetree crawl https://example.com/

  # Crawl deeper and faster, staying on the seed's host
  pagetree crawl -d 3 --delay 200ms --same-host https://example.com/

  # Crawl several seeds concurrently
  pagetree crawl -b 4 https://a.example/ https://b.example/

  # Write a Markdown report to a file
  pagetree crawl --markdown -o report.md https://example.com/

Configuration file (.pagetree) example:
  defaults:
    depth: 2
  sites:
    docs.example.com:
      depth: 4
      maxPages: 500`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Expansion ceiling; links are followed only below this depth")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per seed")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Politeness delay between requests to the same host")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Bool("same-host", false,
		"Follow only links on the seed's host")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", 1,
		"Number of seeds crawled concurrently")

	// Storage flags
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pagetree in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Without a seed argument, ask for one and for the page budget.
	if len(cfg.Seeds) == 0 {
		seed, err := promptSeed(cmd)
		if err != nil {
			return err
		}
		cfg.Seeds = []string{seed}

		budget, err := promptMaxPages(cmd, cfg.MaxPages)
		if err != nil {
			return err
		}
		cfg.MaxPages = budget
	}

	for i, seed := range cfg.Seeds {
		cfg.Seeds[i] = normalizeSeed(seed)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := log.NewLogger(os.Stderr, verbose)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.SameHostOnly, err = cmd.Flags().GetBool("same-host")
	if err != nil {
		return nil, err
	}

	cfg.Batch, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; an implicit search may
	// come up empty without that being an error.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Seeds = args

	return cfg, nil
}

// promptSeed asks the user for a seed URL on the command's input stream.
func promptSeed(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Seed URL to crawl: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no seed URL provided")
	}

	seed := strings.TrimSpace(scanner.Text())
	if seed == "" {
		return "", errors.New("no seed URL provided")
	}

	return seed, nil
}

// promptMaxPages asks for the page budget, keeping the default on empty
// input.
func promptMaxPages(cmd *cobra.Command, defaultPages int) (int, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "Maximum pages to fetch [%d]: ", defaultPages)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, err
		}
		return defaultPages, nil
	}

	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return defaultPages, nil
	}

	n, err := strconv.Atoi(input)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid page budget %q", input)
	}
	return n, nil
}

// normalizeSeed prefixes scheme-less seeds with https:// so that
// "example.com" works as a seed argument.
func normalizeSeed(seed string) string {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return seed
	}
	if u, err := url.Parse(seed); err == nil && u.Scheme != "" {
		return seed
	}
	return "https://" + seed
}

// runCrawl executes the crawl for all seeds.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"depth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"batch", cfg.Batch,
	)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	client := &http.Client{Timeout: cfg.Timeout}

	if len(cfg.Seeds) > 1 && cfg.Batch > 1 {
		return runBatchCrawl(ctx, cfg, client, db, logger)
	}

	return runSequentialCrawl(ctx, cfg, client, db, logger)
}

// runSequentialCrawl crawls seeds one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, client *http.Client, db *database.DB, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		crawlReport := model.NewCrawlReport(seed)

		fmt.Printf("Crawling %s...\n", seed)

		// The spinner only makes sense on an interactive terminal with
		// quiet logging; verbose mode would interleave with it.
		var spin *spinner.Spinner
		if !cfg.Verbose {
			spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond,
				spinner.WithWriter(os.Stderr))
			spin.Suffix = " crawling " + seed
			spin.Start()
		}

		p := pipeline.DefaultPipeline(client, db, cfg, logger)
		err := p.Execute(ctx, crawlReport)

		if spin != nil {
			spin.Stop()
		}

		if err != nil {
			if ctx.Err() != nil {
				// Show what was persisted before the interrupt.
				_ = outputReport(cfg, crawlReport) //nolint:errcheck // Partial report is best effort
				return ctx.Err()
			}
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			continue
		}

		fmt.Printf("Crawl completed in %s\n\n", crawlReport.Elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, client *http.Client, db *database.DB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.Batch)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(client, db, cfg, logger)
		},
		pipeline.WithConcurrency(cfg.Batch),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Seeds, func(crawlReport *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s (%d pages)\n",
			index+1, len(cfg.Seeds), crawlReport.Seed, crawlReport.PagesCrawled)

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", crawlReport.Seed, "error", err)
		}
	})

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(crawlReport)
	return err
}

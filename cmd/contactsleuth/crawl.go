package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactsleuth/contactsleuth/internal/config"
	"github.com/contactsleuth/contactsleuth/internal/crawler"
	"github.com/contactsleuth/contactsleuth/internal/database"
	"github.com/contactsleuth/contactsleuth/internal/extractor"
	internallog "github.com/contactsleuth/contactsleuth/internal/log"
	"github.com/contactsleuth/contactsleuth/internal/model"
	"github.com/contactsleuth/contactsleuth/internal/pipeline"
	"github.com/contactsleuth/contactsleuth/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a domain and extract contact information",
		Long: `Crawl fetches pages from the seed's domain and extracts publicly listed
contact facts: email addresses, personal names, phone numbers, job titles,
LinkedIn profiles, and organization names.

The crawler never leaves the seed's domain. Links are prioritized by
contact relevance (about, team, contact pages first), and fetching is
throttled by global and per-domain rate limits.

Examples:
  # Crawl a single domain
  contactsleuth crawl example.com

  # Crawl multiple domains concurrently
  contactsleuth crawl example.com example.org

  # Crawl every domain listed in a file (one per line)
  contactsleuth crawl --list seeds.txt

  # Output JSON instead of Markdown
  contactsleuth crawl --json example.com

  # Export facts as CSV to a file
  contactsleuth crawl --csv -o facts.csv example.com

  # Use a custom configuration file
  contactsleuth crawl -c myconfig.yaml example.com

Configuration file (.contactsleuth) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      depth: 2
      maxPages: 20`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from the seed URL")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPagesPerDomain,
		"Maximum number of pages to fetch per domain")
	cmd.Flags().IntP("concurrency", "w", config.DefaultConcurrency,
		"Maximum number of fetches in flight at once")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Retry count for transient fetch failures")

	// Rate limiting flags
	cmd.Flags().Int("global-rate", config.DefaultGlobalRate,
		"Requests per second across all domains")
	cmd.Flags().Int("domain-rate", config.DefaultDomainRate,
		"Requests per second against a single domain")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent seed crawls")
	cmd.Flags().StringP("list", "l", "",
		"File containing seed URLs, one per line")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .contactsleuth in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --csv)")
	cmd.Flags().Bool("csv", false,
		"Output CSV fact export (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().Bool("no-db", false,
		"Skip saving crawl results to the local database")

	// HTTP flags
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	logger := internallog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
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

	// Get flag values
	var err error

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPagesPerDomain, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.GlobalRate, err = cmd.Flags().GetInt("global-rate")
	if err != nil {
		return nil, err
	}

	cfg.DomainRate, err = cmd.Flags().GetInt("domain-rate")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-domain configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if !noDB {
		cfg.SaveToDB = true
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Seeds come from positional arguments plus the optional list file
	cfg.Seeds = args

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	if listPath != "" {
		listSeeds, err := readSeedList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Seeds = append(cfg.Seeds, listSeeds...)
	}

	return cfg, nil
}

// readSeedList reads seed URLs from a file, one per line.
// Blank lines and lines starting with '#' are skipped.
func readSeedList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided seed list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open seed list: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed list: %w", err)
	}

	return seeds, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Seeds) == 0 {
		return errors.New("no seeds provided (specify one or more URLs as arguments or use --list)")
	}

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Use batch processor for parallel crawling if multiple seeds
	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}

	// Single seed or sequential crawling
	return runSequentialCrawl(ctx, cfg, db, logger)
}

// runSequentialCrawl crawls seeds one at a time, applying per-domain
// site configs.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		seedURL, domain, err := crawler.NormalizeSeed(seed)
		if err != nil {
			logger.Error("invalid seed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Invalid seed %q: %v\n", seed, err)
			continue
		}

		// Get per-domain configuration
		siteConfig := cfg.SiteConfigs.GetSiteConfig(domain)

		// Create pipeline with per-domain options
		p := createPipelineForSeed(cfg, siteConfig, db, logger)

		crawlReport := model.NewCrawlReport(seedURL, domain)

		fmt.Printf("Crawling %s...\n", seedURL)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "seed", seedURL, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seedURL, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", seedURL, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; per-domain configs (cookies, headers, depth) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Per-domain configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-domain settings.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Batch mode uses the config file defaults only; per-domain
			// configs would require per-seed pipeline creation.
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return createPipelineForSeed(cfg, siteConfig, db, logger)
		},
		pipeline.WithBatchConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Seeds, func(crawlReport *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Seeds), crawlReport.StartURL)

		// Generate and output report
		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", crawlReport.StartURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createPipelineForSeed creates a crawl pipeline with the given configuration.
func createPipelineForSeed(cfg *config.Config, siteConfig config.SiteConfig, db *database.CrawlDB, logger *slog.Logger) *pipeline.Pipeline {
	// Per-domain overrides from the config file
	maxDepth := cfg.MaxDepth
	if siteConfig.Depth > 0 {
		maxDepth = siteConfig.Depth
	}
	maxPages := cfg.MaxPagesPerDomain
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}
	domainRate := cfg.DomainRate
	if siteConfig.DomainRate > 0 {
		domainRate = siteConfig.DomainRate
	}

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}

	// Merge cookie and custom headers into request headers
	headers := make(map[string]string, len(siteConfig.Headers)+1)
	for k, v := range siteConfig.Headers {
		headers[k] = v
	}
	if siteConfig.Cookie != "" {
		headers["Cookie"] = siteConfig.Cookie
	}
	if len(headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(headers))
	}

	fetcher := crawler.NewFetcher(
		&http.Client{Timeout: cfg.FetchTimeout},
		fetcherOpts...,
	)

	limiter := crawler.NewRateLimiter(
		crawler.RateConfig{Requests: cfg.GlobalRate, Window: cfg.RateWindow},
		crawler.RateConfig{Requests: domainRate, Window: cfg.RateWindow},
	)

	orchestrator := crawler.NewOrchestrator(
		fetcher,
		limiter,
		extractor.NewPageExtractor(logger),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithMaxRetries(cfg.MaxRetries),
		crawler.WithMaxDepth(maxDepth),
		crawler.WithMaxPagesPerDomain(maxPages),
		crawler.WithLogger(logger),
	)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddStep(pipeline.NewCrawlStep(orchestrator, pipeline.WithCrawlLogger(logger)))
	p.AddStep(pipeline.NewAggregateStep(pipeline.WithAggregateLogger(logger)))
	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db, pipeline.WithPersistLogger(logger)))
	}

	return p
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports contain personal contact details that should only be
		// readable by the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.CSVReport:
		writer = report.NewCSVWriter(output)
	default:
		writer = report.NewMarkdownWriter(output)
	}

	_, err := writer.Write(crawlReport)
	return err
}

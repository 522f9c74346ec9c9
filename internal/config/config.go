package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are chosen to be polite to the crawled sites while still finishing
// a typical small-business domain in well under a minute.
const (
	// DefaultFetchTimeout applies to a single HTTP request, connection
	// included. Contact pages are small; anything slower than 20 seconds
	// is treated as a transient failure and retried.
	DefaultFetchTimeout = 20 * time.Second

	// DefaultMaxDepth limits how many link hops from the seed are followed.
	// Contact information almost always lives within three clicks of the
	// home page (about, team, contact, and their children).
	DefaultMaxDepth = 3

	// DefaultMaxPagesPerDomain caps how many pages are fetched from one
	// domain. This prevents runaway crawling on large or
	// infinitely-generating sites.
	DefaultMaxPagesPerDomain = 50

	// DefaultGlobalRate is the process-wide request budget per window.
	DefaultGlobalRate = 10

	// DefaultDomainRate is the per-domain request budget per window.
	// Keeping this below the global rate lets multi-seed runs interleave
	// domains instead of hammering one host.
	DefaultDomainRate = 5

	// DefaultRateWindow is the window over which the rate budgets apply.
	DefaultRateWindow = 1 * time.Second

	// DefaultConcurrency is the number of fetches allowed in flight at once.
	DefaultConcurrency = 4

	// DefaultMaxRetries is how many times a transient fetch failure is
	// retried before the URL is given up on.
	DefaultMaxRetries = 3

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// processing a seed list.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "contactsleuth"

	// DefaultUserAgent identifies ContactSleuth in HTTP requests.
	// A descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "contactsleuth/1.0 (+https://github.com/contactsleuth/contactsleuth)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for ContactSleuth.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// FetchTimeout is the timeout for each HTTP request.
	// This applies to individual fetches, not the overall crawl duration.
	FetchTimeout time.Duration

	// MaxDepth is the maximum link distance from the seed URL.
	// Depth 0 means only fetch the seed page itself.
	MaxDepth int

	// MaxPagesPerDomain caps the number of pages fetched from one domain.
	// A value of 0 means use the default (DefaultMaxPagesPerDomain).
	MaxPagesPerDomain int

	// GlobalRate is the number of requests allowed per RateWindow across
	// all domains combined.
	GlobalRate int

	// DomainRate is the number of requests allowed per RateWindow against
	// a single domain.
	DomainRate int

	// RateWindow is the time window the rate budgets apply to.
	RateWindow time.Duration

	// Concurrency is the maximum number of fetches in flight at once.
	Concurrency int

	// MaxRetries is how many times transient fetch failures are retried.
	MaxRetries int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of seeds crawled concurrently when processing
	// a seed list.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .contactsleuth in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-domain configurations loaded from the config
	// file. This is populated by LoadConfigFile and consulted per seed.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of Markdown.
	// Mutually exclusive with CSVReport.
	JSONReport bool

	// CSVReport enables CSV fact export instead of Markdown.
	// Mutually exclusive with JSONReport.
	CSVReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Seeds is the list of seed URLs or hostnames to crawl.
	// Must contain at least one entry.
	Seeds []string

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl results are saved for historical comparison.
	// When empty, crawl results are not persisted.
	// Defaults to XDG data directory (~/.local/share/contactsleuth on Linux).
	DBDir string

	// SaveToDB indicates whether to save crawl results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, rate
// budgets). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		FetchTimeout:      DefaultFetchTimeout,
		MaxDepth:          DefaultMaxDepth,
		MaxPagesPerDomain: DefaultMaxPagesPerDomain,
		GlobalRate:        DefaultGlobalRate,
		DomainRate:        DefaultDomainRate,
		RateWindow:        DefaultRateWindow,
		Concurrency:       DefaultConcurrency,
		MaxRetries:        DefaultMaxRetries,
		BatchSize:         DefaultBatchSize,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for ContactSleuth.
// On Linux: ~/.local/share/contactsleuth
// On macOS: ~/Library/Application Support/contactsleuth
// On Windows: %LOCALAPPDATA%\contactsleuth
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ContactSleuth.
// On Linux: ~/.config/contactsleuth
// On macOS: ~/Library/Application Support/contactsleuth
// On Windows: %APPDATA%\contactsleuth
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for ContactSleuth.
// On Linux: ~/.cache/contactsleuth
// On macOS: ~/Library/Caches/contactsleuth
// On Windows: %LOCALAPPDATA%\contactsleuth\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one seed to crawl
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	// FetchTimeout must be positive; zero would cause immediate failures
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// Depth must be non-negative; depth 0 still fetches the seed page
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}

	// Page budget must be non-negative; 0 means use the default
	if c.MaxPagesPerDomain < 0 {
		return ErrInvalidPageBudget
	}

	// Rate budgets must be positive; zero would stall the crawl forever
	if c.GlobalRate <= 0 || c.DomainRate <= 0 || c.RateWindow <= 0 {
		return ErrInvalidRate
	}

	// Concurrency must be positive
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// Retries must be non-negative; 0 means no retries
	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}

	// BatchSize must be positive; zero would mean no crawling
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and CSVReport are mutually exclusive
	if c.JSONReport && c.CSVReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoSeed is returned when no seed URL or seed list file is specified.
	// This error occurs when neither --list nor a positional argument
	// provides a seed.
	ErrNoSeed = errors.New("no seed specified: provide a URL or use --list")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and means only the seed page is fetched.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidPageBudget is returned when the per-domain page budget is
	// negative. Use 0 to fall back to the default budget.
	ErrInvalidPageBudget = errors.New("invalid page budget: must be non-negative")

	// ErrInvalidRate is returned when a rate budget or window is not
	// positive. A zero budget would block every fetch indefinitely.
	ErrInvalidRate = errors.New("invalid rate limit: budgets and window must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not
	// positive. Zero workers would stall the crawl.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRetries is returned when the retry count is negative.
	// Use 0 to disable retries for transient failures.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent crawls, effectively
	// stopping the run.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --csv
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --csv cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

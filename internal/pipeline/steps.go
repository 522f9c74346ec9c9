package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contactsleuth/contactsleuth/internal/crawler"
	"github.com/contactsleuth/contactsleuth/internal/extractor"
	"github.com/contactsleuth/contactsleuth/internal/model"
)

// CrawlStep walks the seed's domain, fetching pages and collecting raw
// contact facts into the report.
//
// Design decision: crawling is a single step rather than separate fetch and
// extract steps because extraction happens per page as it arrives; splitting
// them would require buffering every page body in the report.
type CrawlStep struct {
	// orchestrator drives the frontier, rate limiter, and fetch workers.
	orchestrator *crawler.Orchestrator

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

// NewCrawlStep creates a new crawl step around a configured orchestrator.
func NewCrawlStep(orchestrator *crawler.Orchestrator, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		orchestrator: orchestrator,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if err := s.orchestrator.CrawlInto(ctx, report); err != nil {
		return fmt.Errorf("crawl %s: %w", report.StartURL, err)
	}

	s.logger.Info("crawl finished",
		"seed", report.StartURL,
		"pages", report.PagesCrawled,
		"raw_facts", report.FactCount(),
	)

	return nil
}

// AggregateStep deduplicates the raw facts collected during the crawl.
// Facts sharing a (type, value) pair collapse into one entry carrying the
// highest confidence observed.
type AggregateStep struct {
	logger *slog.Logger
}

// AggregateStepOption configures an AggregateStep.
type AggregateStepOption func(*AggregateStep)

// WithAggregateLogger sets a custom logger for the aggregate step.
func WithAggregateLogger(logger *slog.Logger) AggregateStepOption {
	return func(s *AggregateStep) {
		s.logger = logger
	}
}

// NewAggregateStep creates a new aggregation step.
func NewAggregateStep(opts ...AggregateStepOption) *AggregateStep {
	s := &AggregateStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregation step.
func (s *AggregateStep) Do(_ context.Context, report *model.CrawlReport) error {
	report.Facts = extractor.Aggregate(report.RawFacts)

	s.logger.Debug("aggregation finished",
		"seed", report.StartURL,
		"raw_facts", len(report.RawFacts),
		"facts", len(report.Facts),
	)

	return nil
}

// ReportStore persists completed crawl reports.
// *database.CrawlDB satisfies this interface.
type ReportStore interface {
	SaveReport(ctx context.Context, report *model.CrawlReport) error
}

// PersistStep writes the report to the local database so later runs can
// consult crawl history.
type PersistStep struct {
	store  ReportStore
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step.
func NewPersistStep(store ReportStore, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step.
func (s *PersistStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if err := s.store.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("persist report for %s: %w", report.StartURL, err)
	}

	s.logger.Debug("report persisted",
		"seed", report.StartURL,
		"facts", len(report.Facts),
	)

	return nil
}

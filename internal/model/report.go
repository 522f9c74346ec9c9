package model

import (
	"sync"
	"time"
)

// CrawlReport holds everything collected while crawling one seed URL.
//
// Design decision: one large struct per seed rather than many small ones,
// to simplify serialization, database storage, and report writing. Raw facts
// are kept alongside the aggregated view so the aggregation step can run as
// a separate pipeline stage.
type CrawlReport struct {
	// StartURL is the seed URL this report covers.
	StartURL string `json:"start_url"`

	// Domain is the seed's lowercased hostname.
	Domain string `json:"domain"`

	// DateCrawled is when the crawl started.
	DateCrawled time.Time `json:"date_crawled"`

	// Pages maps visited URLs to their HTTP status codes.
	// Failed fetches are recorded with status 0.
	Pages map[string]int `json:"pages,omitempty"`

	// PagesCrawled is the number of pages charged against the domain budget.
	PagesCrawled int `json:"pages_crawled"`

	// RawFacts are all facts reported by the extractors, pre-aggregation.
	RawFacts []Fact `json:"-"`

	// Facts are the aggregated, deduplicated facts.
	Facts []AggregatedFact `json:"facts"`

	// TimedOut is true if the crawl was cancelled before draining.
	TimedOut bool `json:"timed_out,omitempty"`

	// ErrorMessage records a crawl-level failure, if any.
	ErrorMessage string `json:"error,omitempty"`

	// PerformedSteps lists the pipeline steps that ran for this report.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// mu guards the mutable slices and map; fetch completions for different
	// pages land concurrently.
	mu sync.Mutex
}

// NewCrawlReport creates an empty report for the given seed URL.
func NewCrawlReport(startURL, domain string) *CrawlReport {
	return &CrawlReport{
		StartURL:    startURL,
		Domain:      domain,
		DateCrawled: time.Now(),
		Pages:       make(map[string]int),
	}
}

// AddPage records a visited URL and its HTTP status code.
func (r *CrawlReport) AddPage(pageURL string, statusCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pages[pageURL] = statusCode
	r.PagesCrawled++
}

// AddFacts appends raw facts from one page.
func (r *CrawlReport) AddFacts(facts []Fact) {
	if len(facts) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RawFacts = append(r.RawFacts, facts...)
}

// FactCount returns the number of raw facts collected so far.
func (r *CrawlReport) FactCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.RawFacts)
}

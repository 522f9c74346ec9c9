package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// FactExtractor produces contact facts from one fetched page.
// The extractor package provides the production implementation.
type FactExtractor interface {
	// ExtractPage returns all facts found on the page. It must never
	// panic past its boundary; a failing strategy contributes no facts.
	ExtractPage(pageURL string, body []byte, doc *Document) []model.Fact
}

// Orchestrator drives the crawl of a single seed URL: it pops candidates
// from the frontier, gates them through the rate limiter, fetches them on a
// bounded worker pool, and feeds successful pages to both the link scorer
// and the fact extractor.
//
// Design decision: one scheduling loop owns dispatch, completions, and retry
// due-times. Workers perform exactly one fetch attempt and never sleep
// between retries: a transient failure comes back as a scheduled retry with
// a due time, so a backing-off URL never occupies a fetch slot.
type Orchestrator struct {
	fetcher   *Fetcher
	limiter   *RateLimiter
	scorer    *LinkScorer
	extractor FactExtractor
	logger    *slog.Logger

	// concurrency bounds the number of in-flight fetches.
	concurrency int

	// maxRetries bounds fetch attempts per URL for transient failures.
	maxRetries int

	maxDepth          int
	maxPagesPerDomain int
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithConcurrency sets the fetch pool width.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMaxRetries sets the per-URL attempt bound for transient failures.
// Zero means a single attempt with no retries; negative values are ignored.
func WithMaxRetries(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithMaxDepth sets the crawl depth limit.
func WithMaxDepth(depth int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.maxDepth = depth
	}
}

// WithMaxPagesPerDomain sets the per-domain page budget.
// Zero and negative values keep the default budget.
func WithMaxPagesPerDomain(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxPagesPerDomain = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(fetcher *Fetcher, limiter *RateLimiter, extractor FactExtractor, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		fetcher:           fetcher,
		limiter:           limiter,
		scorer:            NewLinkScorer(),
		extractor:         extractor,
		concurrency:       4,
		maxRetries:        3,
		maxDepth:          3,
		maxPagesPerDomain: 50,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// fetchOutcome is a completed fetch attempt returned by a worker.
type fetchOutcome struct {
	candidate model.CandidateURL
	attempt   int
	result    model.FetchResult
}

// retryItem is a transiently-failed URL waiting out its backoff.
type retryItem struct {
	candidate model.CandidateURL
	attempt   int
	due       time.Time
}

// Crawl crawls from startURL until the frontier drains or the context is
// cancelled, and returns the report with raw facts attached. A seed that
// fails entirely yields an empty report, not an error; only context
// cancellation is reported as an error.
func (o *Orchestrator) Crawl(ctx context.Context, startURL string) (*model.CrawlReport, error) {
	seed, domain, err := NormalizeSeed(startURL)
	if err != nil {
		report := model.NewCrawlReport(startURL, "")
		report.ErrorMessage = err.Error()
		return report, nil
	}

	report := model.NewCrawlReport(seed, domain)
	return report, o.CrawlInto(ctx, report)
}

// CrawlInto crawls report.StartURL (already normalized) and records pages
// and raw facts on the given report.
func (o *Orchestrator) CrawlInto(ctx context.Context, report *model.CrawlReport) error {
	seed, domain := report.StartURL, report.Domain
	frontier := NewFrontier(domain, o.maxDepth, o.maxPagesPerDomain)
	frontier.Push(model.CandidateURL{URL: seed, Depth: 0, Priority: 0, Domain: domain})

	// Buffered to the pool width so workers never block on send, even if
	// the loop exits on cancellation.
	completions := make(chan fetchOutcome, o.concurrency)

	inFlight := 0
	var ready []retryItem   // due retries waiting for a fetch slot
	var pending []retryItem // retries still waiting out their backoff

	dispatch := func() {
		for inFlight < o.concurrency {
			if len(ready) > 0 {
				r := ready[0]
				ready = ready[1:]
				inFlight++
				go o.fetchWorker(ctx, completions, r.candidate, r.attempt)
				continue
			}
			cand, ok := frontier.Pop()
			if !ok {
				break
			}
			frontier.MarkVisited(cand.URL)
			inFlight++
			go o.fetchWorker(ctx, completions, cand, 1)
		}
	}

	for {
		dispatch()

		if inFlight == 0 && len(ready) == 0 && len(pending) == 0 && frontier.Len() == 0 {
			break // drained
		}

		var timerC <-chan time.Time
		var timer *time.Timer
		if len(pending) > 0 {
			earliest := pending[0].due
			for _, p := range pending[1:] {
				if p.due.Before(earliest) {
					earliest = p.due
				}
			}
			timer = time.NewTimer(time.Until(earliest))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			report.TimedOut = true
			return ctx.Err()

		case out := <-completions:
			inFlight--
			pending = o.handleOutcome(out, frontier, report, pending)

		case now := <-timerC:
			remaining := pending[:0]
			for _, p := range pending {
				if !p.due.After(now) {
					ready = append(ready, p)
				} else {
					remaining = append(remaining, p)
				}
			}
			pending = remaining
		}

		if timer != nil {
			timer.Stop()
		}
	}

	return nil
}

// fetchWorker runs one rate-gated fetch attempt and reports the outcome.
func (o *Orchestrator) fetchWorker(ctx context.Context, completions chan<- fetchOutcome, cand model.CandidateURL, attempt int) {
	if err := o.limiter.Wait(ctx, cand.Domain); err != nil {
		completions <- fetchOutcome{
			candidate: cand,
			attempt:   attempt,
			result:    model.FetchResult{URL: cand.URL, Status: model.FetchConnectionError},
		}
		return
	}
	completions <- fetchOutcome{
		candidate: cand,
		attempt:   attempt,
		result:    o.fetcher.Fetch(ctx, cand.URL),
	}
}

// handleOutcome processes one completed attempt: successful pages feed the
// scorer and the extractor, transient failures with attempts left are
// scheduled for retry with exponential backoff, and everything else is a
// terminal skip.
func (o *Orchestrator) handleOutcome(out fetchOutcome, frontier *Frontier, report *model.CrawlReport, pending []retryItem) []retryItem {
	cand := out.candidate
	res := out.result

	switch {
	case res.Status == model.FetchOK:
		report.AddPage(cand.URL, res.StatusCode)
		o.processPage(cand, res.Body, frontier, report)

	case res.Status.Transient() && out.attempt < o.maxRetries:
		// Wait 2^attempt seconds before the next try, tracked as a
		// due-time so no worker sleeps through the backoff.
		backoff := time.Duration(1<<out.attempt) * time.Second
		o.logger.Debug("scheduling retry",
			"url", cand.URL,
			"attempt", out.attempt,
			"backoff", backoff,
		)
		pending = append(pending, retryItem{
			candidate: cand,
			attempt:   out.attempt + 1,
			due:       time.Now().Add(backoff),
		})

	default:
		// Terminal: DNS failure, HTTP status error, or retries exhausted.
		// The URL is dropped, never requeued.
		report.AddPage(cand.URL, res.StatusCode)
		o.logger.Debug("skipping url",
			"url", cand.URL,
			"status", res.Status.String(),
			"code", res.StatusCode,
		)
	}

	return pending
}

// processPage hands one fetched page to the link scorer and the extractor.
func (o *Orchestrator) processPage(cand model.CandidateURL, body []byte, frontier *Frontier, report *model.CrawlReport) {
	doc, err := ParseDocument(cand.URL, body)
	if err != nil {
		o.logger.Warn("unparseable page", "url", cand.URL, "error", err)
		return
	}

	for _, c := range o.scorer.Score(doc, cand.Domain, cand.Depth) {
		frontier.Push(c)
	}

	facts := o.extractor.ExtractPage(cand.URL, body, doc)
	report.AddFacts(facts)
}

// NormalizeSeed defaults a missing scheme to http:// and extracts the
// seed's domain.
func NormalizeSeed(startURL string) (string, string, error) {
	s := strings.TrimSpace(startURL)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", "", err
	}
	domain := strings.ToLower(u.Hostname())
	if domain == "" {
		return "", "", &url.Error{Op: "parse", URL: startURL, Err: errEmptyHost}
	}
	u.Host = strings.ToLower(u.Host)
	return u.String(), domain, nil
}

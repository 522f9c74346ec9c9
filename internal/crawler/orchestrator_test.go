package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// mailtoExtractor reports every mailto target as an email fact.
type mailtoExtractor struct{}

func (mailtoExtractor) ExtractPage(pageURL string, _ []byte, doc *Document) []model.Fact {
	facts := make([]model.Fact, 0, len(doc.Mailtos))
	for _, addr := range doc.Mailtos {
		facts = append(facts, model.Fact{
			Type:       model.FactEmail,
			Value:      addr,
			Confidence: 1.0,
			SourceURL:  pageURL,
		})
	}
	return facts
}

// newTestOrchestrator wires an orchestrator against an httptest server with
// generous rate limits.
func newTestOrchestrator(t *testing.T, srv *httptest.Server, opts ...OrchestratorOption) *Orchestrator {
	t.Helper()

	fetcher := NewFetcher(srv.Client(), WithResolver(okResolver{}))
	limiter := NewRateLimiter(
		RateConfig{Requests: 1000, Window: time.Second},
		RateConfig{Requests: 1000, Window: time.Second},
	)
	return NewOrchestrator(fetcher, limiter, mailtoExtractor{}, opts...)
}

func TestOrchestratorCrawl(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body>
			<a href="/team">Meet the team</a>
			<a href="/contact">Contact us</a>
		</body></html>`))
	})
	mux.HandleFunc("/team", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="mailto:team@acme.example">Email the team</a>
		</body></html>`))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="mailto:info@acme.example">Email us</a>
			<a href="/team">Team</a>
		</body></html>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	o := newTestOrchestrator(t, srv, WithConcurrency(2), WithMaxDepth(2), WithMaxPagesPerDomain(10))

	report, err := o.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("visits discovered pages once each", func(t *testing.T) {
		if len(report.Pages) != 3 {
			t.Errorf("expected 3 pages, got %d (%v)", len(report.Pages), report.Pages)
		}
		for pageURL, status := range report.Pages {
			if status != http.StatusOK {
				t.Errorf("expected status 200 for %s, got %d", pageURL, status)
			}
		}
	})

	t.Run("collects facts from crawled pages", func(t *testing.T) {
		values := make(map[string]bool)
		for _, f := range report.RawFacts {
			values[f.Value] = true
		}
		if !values["team@acme.example"] || !values["info@acme.example"] {
			t.Errorf("expected both mailto facts, got %v", values)
		}
	})

	t.Run("normalizes the seed", func(t *testing.T) {
		u, _ := url.Parse(srv.URL)
		if report.Domain != u.Hostname() {
			t.Errorf("expected domain %q, got %q", u.Hostname(), report.Domain)
		}
	})
}

func TestOrchestratorCrawlRecordsHTTPErrors(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body><a href="/contact">Contact</a></body></html>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	o := newTestOrchestrator(t, srv, WithMaxDepth(2), WithMaxPagesPerDomain(10))

	report, err := o.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := report.Pages[srv.URL+"/contact"]; got != http.StatusNotFound {
		t.Errorf("expected 404 recorded for missing page, got %d (%v)", got, report.Pages)
	}
}

func TestOrchestratorCrawlHonorsPageBudget(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Every page links to two more contact-flavored pages.
		_, _ = w.Write([]byte(`<html><body>
			<a href="/contact-1">Contact</a>
			<a href="/contact-2">Contact</a>
		</body></html>`))
	}))
	t.Cleanup(srv.Close)

	o := newTestOrchestrator(t, srv, WithConcurrency(1), WithMaxDepth(10), WithMaxPagesPerDomain(3))

	report, err := o.Crawl(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.PagesCrawled > 3 {
		t.Errorf("expected at most 3 pages crawled, got %d", report.PagesCrawled)
	}
}

func TestOrchestratorCrawlCancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html></html>`))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, srv)
	report, err := o.Crawl(ctx, srv.URL)
	if err == nil {
		t.Error("expected context error")
	}
	if !report.TimedOut {
		t.Error("expected report to be marked timed out")
	}
}

func TestOrchestratorCrawlInvalidSeed(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(
		NewFetcher(&http.Client{}, WithResolver(failResolver{})),
		NewRateLimiter(
			RateConfig{Requests: 10, Window: time.Second},
			RateConfig{Requests: 10, Window: time.Second},
		),
		mailtoExtractor{},
	)

	report, err := o.Crawl(context.Background(), "http://")
	if err != nil {
		t.Fatalf("invalid seed should not be a crawl error, got %v", err)
	}
	if report.ErrorMessage == "" {
		t.Error("expected error message on report for invalid seed")
	}
}

func TestHandleOutcomeRetryScheduling(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(
		NewFetcher(&http.Client{}, WithResolver(okResolver{})),
		NewRateLimiter(
			RateConfig{Requests: 1000, Window: time.Second},
			RateConfig{Requests: 1000, Window: time.Second},
		),
		mailtoExtractor{},
		WithMaxRetries(3),
	)
	frontier := NewFrontier("example.com", 3, 50)
	report := model.NewCrawlReport("http://example.com", "example.com")
	cand := model.CandidateURL{URL: "http://example.com/slow", Depth: 1, Priority: 90, Domain: "example.com"}

	t.Run("schedules transient failure with exponential backoff", func(t *testing.T) {
		before := time.Now()
		pending := o.handleOutcome(fetchOutcome{
			candidate: cand,
			attempt:   1,
			result:    model.FetchResult{URL: cand.URL, Status: model.FetchTimeout},
		}, frontier, report, nil)

		if len(pending) != 1 {
			t.Fatalf("expected 1 pending retry, got %d", len(pending))
		}
		if pending[0].attempt != 2 {
			t.Errorf("expected next attempt 2, got %d", pending[0].attempt)
		}
		// First retry backs off 2^1 seconds.
		if due := pending[0].due.Sub(before); due < 1500*time.Millisecond || due > 2500*time.Millisecond {
			t.Errorf("expected ~2s backoff, got %v", due)
		}
		if len(report.Pages) != 0 {
			t.Error("transient failure must not be recorded as a page yet")
		}
	})

	t.Run("exhausted retries become terminal", func(t *testing.T) {
		pending := o.handleOutcome(fetchOutcome{
			candidate: cand,
			attempt:   3,
			result:    model.FetchResult{URL: cand.URL, Status: model.FetchTimeout},
		}, frontier, report, nil)

		if len(pending) != 0 {
			t.Errorf("expected no retry after max attempts, got %d", len(pending))
		}
		if _, ok := report.Pages[cand.URL]; !ok {
			t.Error("expected exhausted URL to be recorded as a page")
		}
	})

	t.Run("http error is terminal immediately", func(t *testing.T) {
		other := model.CandidateURL{URL: "http://example.com/gone", Depth: 1, Priority: 90, Domain: "example.com"}
		pending := o.handleOutcome(fetchOutcome{
			candidate: other,
			attempt:   1,
			result:    model.FetchResult{URL: other.URL, Status: model.FetchHTTPError, StatusCode: 410},
		}, frontier, report, nil)

		if len(pending) != 0 {
			t.Errorf("expected no retry for HTTP error, got %d", len(pending))
		}
		if report.Pages[other.URL] != 410 {
			t.Errorf("expected 410 recorded, got %d", report.Pages[other.URL])
		}
	})
}

func TestOrchestratorOptionZeroValues(t *testing.T) {
	t.Parallel()

	newOrch := func(opts ...OrchestratorOption) *Orchestrator {
		return NewOrchestrator(
			NewFetcher(&http.Client{}, WithResolver(okResolver{})),
			NewRateLimiter(
				RateConfig{Requests: 1000, Window: time.Second},
				RateConfig{Requests: 1000, Window: time.Second},
			),
			mailtoExtractor{},
			opts...,
		)
	}

	t.Run("zero max retries disables retries", func(t *testing.T) {
		t.Parallel()

		o := newOrch(WithMaxRetries(0))
		if o.maxRetries != 0 {
			t.Fatalf("expected maxRetries 0, got %d", o.maxRetries)
		}

		frontier := NewFrontier("example.com", 3, 50)
		report := model.NewCrawlReport("http://example.com", "example.com")
		cand := model.CandidateURL{URL: "http://example.com/slow", Depth: 1, Priority: 90, Domain: "example.com"}

		pending := o.handleOutcome(fetchOutcome{
			candidate: cand,
			attempt:   1,
			result:    model.FetchResult{URL: cand.URL, Status: model.FetchTimeout},
		}, frontier, report, nil)

		if len(pending) != 0 {
			t.Errorf("expected transient failure to be terminal with retries disabled, got %d pending", len(pending))
		}
		if _, ok := report.Pages[cand.URL]; !ok {
			t.Error("expected failed URL to be recorded as a page")
		}
	})

	t.Run("zero page budget keeps the default", func(t *testing.T) {
		t.Parallel()

		o := newOrch(WithMaxPagesPerDomain(0))
		if o.maxPagesPerDomain != 50 {
			t.Errorf("expected default page budget 50, got %d", o.maxPagesPerDomain)
		}
	})

	t.Run("negative retries keep the default", func(t *testing.T) {
		t.Parallel()

		o := newOrch(WithMaxRetries(-1))
		if o.maxRetries != 3 {
			t.Errorf("expected default maxRetries 3, got %d", o.maxRetries)
		}
	})
}

func TestNormalizeSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		wantURL    string
		wantDomain string
		wantErr    bool
	}{
		{
			name:       "bare hostname gets http scheme",
			in:         "example.com",
			wantURL:    "http://example.com",
			wantDomain: "example.com",
		},
		{
			name:       "https seed is preserved",
			in:         "https://example.com/about",
			wantURL:    "https://example.com/about",
			wantDomain: "example.com",
		},
		{
			name:       "host is lowercased",
			in:         "http://Example.COM/Team",
			wantURL:    "http://example.com/Team",
			wantDomain: "example.com",
		},
		{
			name:       "surrounding whitespace is trimmed",
			in:         "  example.com  ",
			wantURL:    "http://example.com",
			wantDomain: "example.com",
		},
		{
			name:    "empty host is an error",
			in:      "http://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotURL, gotDomain, err := NormalizeSeed(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotURL != tt.wantURL {
				t.Errorf("expected URL %q, got %q", tt.wantURL, gotURL)
			}
			if gotDomain != tt.wantDomain {
				t.Errorf("expected domain %q, got %q", tt.wantDomain, gotDomain)
			}
		})
	}
}

package crawler

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// Resolver looks up hostnames. *net.Resolver satisfies it; tests substitute
// a canned implementation.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Fetcher downloads single pages and classifies the outcome.
//
// Design decision: the HTTP client is injected rather than constructed here,
// consistent with the rest of the codebase. It carries the per-request
// deadline (client.Timeout), proxy settings, and connection pooling, and lets
// tests point the fetcher at an httptest server.
type Fetcher struct {
	// client issues the requests. Its Timeout is the fetch deadline.
	client *http.Client

	// resolver performs the DNS pre-check before any request is issued.
	// A host that does not resolve will not resolve on retry, so DNS
	// failures are terminal.
	resolver Resolver

	// userAgent is sent with every request.
	userAgent string

	// extraHeaders are additional request headers, e.g. per-domain
	// overrides from the config file.
	extraHeaders map[string]string

	// maxBodySize caps the number of response bytes read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithResolver substitutes the DNS resolver. Used by tests.
func WithResolver(r Resolver) FetcherOption {
	return func(f *Fetcher) {
		f.resolver = r
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets additional request headers.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.extraHeaders = headers
	}
}

// WithMaxBodySize sets the response body read limit.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// NewFetcher creates a Fetcher using the given HTTP client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		resolver:    net.DefaultResolver,
		userAgent:   "contactsleuth/1.0",
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs one fetch attempt for the URL and classifies the outcome.
// It never retries; retry scheduling belongs to the orchestrator.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) model.FetchResult {
	u, err := url.Parse(pageURL)
	if err != nil {
		return model.FetchResult{URL: pageURL, Status: model.FetchDNSError}
	}

	if _, err := f.resolver.LookupHost(ctx, u.Hostname()); err != nil {
		return model.FetchResult{URL: pageURL, Status: model.FetchDNSError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return model.FetchResult{URL: pageURL, Status: model.FetchConnectionError}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return model.FetchResult{URL: pageURL, Status: classifyTransportError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.FetchResult{URL: pageURL, Status: model.FetchHTTPError, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return model.FetchResult{URL: pageURL, Status: classifyTransportError(err)}
	}

	return model.FetchResult{URL: pageURL, Status: model.FetchOK, StatusCode: resp.StatusCode, Body: body}
}

// classifyTransportError maps a transport-level error to a fetch status.
// Deadline expiry counts as a timeout; everything else as a connection error.
// Both are transient.
func classifyTransportError(err error) model.FetchStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FetchTimeout
	}
	return model.FetchConnectionError
}

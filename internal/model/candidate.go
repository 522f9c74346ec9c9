package model

import (
	"net/url"
	"strings"
)

// CandidateURL is a URL queued for crawling.
// Candidates are immutable once enqueued and destroyed on dequeue.
type CandidateURL struct {
	// URL is the normalized absolute URL.
	URL string

	// Depth is the link distance from the seed (seed itself is 0).
	Depth int

	// Priority orders the frontier; numerically smaller pops first.
	Priority int

	// Domain is the lowercased hostname.
	Domain string
}

// URLIdentity reduces a URL to its deduplication identity: the lowercased
// (host, path) pair. Scheme and query variants of the same host+path are
// treated as the same page.
//
// Design decision: http://Example.com/About?utm=x and https://example.com/about
// name the same document for crawl purposes. Treating them as distinct would
// burn page budget on duplicates.
func URLIdentity(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return strings.ToLower(u.Hostname()) + strings.ToLower(path)
}

// FetchStatus classifies the outcome of fetching one URL.
type FetchStatus int

// Fetch outcomes.
const (
	// FetchOK means HTTP 200 with a body.
	FetchOK FetchStatus = iota

	// FetchHTTPError means a non-200 HTTP status. Terminal, never retried.
	FetchHTTPError

	// FetchDNSError means the host did not resolve. Terminal, never retried.
	FetchDNSError

	// FetchTimeout means the request deadline expired. Transient.
	FetchTimeout

	// FetchConnectionError means the connection failed. Transient.
	FetchConnectionError
)

// String returns a human-readable status name.
func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchHTTPError:
		return "http_error"
	case FetchDNSError:
		return "dns_error"
	case FetchTimeout:
		return "timeout"
	case FetchConnectionError:
		return "connection_error"
	default:
		return "unknown"
	}
}

// Transient reports whether the outcome is eligible for retry.
func (s FetchStatus) Transient() bool {
	return s == FetchTimeout || s == FetchConnectionError
}

// FetchResult is the classified outcome of one fetch attempt.
type FetchResult struct {
	// URL is the fetched URL.
	URL string

	// Status classifies the outcome.
	Status FetchStatus

	// StatusCode is the HTTP status code, when a response was received.
	StatusCode int

	// Body is the response body for FetchOK results, nil otherwise.
	Body []byte
}

// Package crawler implements the crawl frontier, rate-limited scheduling,
// fetching with retry, link scoring, and the orchestration loop that drives
// a crawl from one seed URL to a finished report.
package crawler

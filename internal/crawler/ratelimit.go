package crawler

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateConfig describes a token-bucket rate: Requests per Window.
type RateConfig struct {
	Requests int
	Window   time.Duration
}

// limiter builds a *rate.Limiter for this config.
func (c RateConfig) limiter() *rate.Limiter {
	interval := c.Window / time.Duration(c.Requests)
	if interval <= 0 {
		interval = time.Millisecond
	}
	burst := c.Requests
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// RateLimiter provides two-level admission control: every request must pass
// the global bucket AND the bucket for its own domain. Admission blocks until
// capacity is available; it never rejects a request, only delays it.
//
// Domain buckets are created lazily on first request to a domain and persist
// for the limiter's lifetime. x/time/rate grants waiters first-come
// first-served per bucket, so there is no priority inversion.
type RateLimiter struct {
	global *rate.Limiter

	mu        sync.Mutex
	domains   map[string]*rate.Limiter
	domainCfg RateConfig
}

// NewRateLimiter creates a RateLimiter with the given global and per-domain
// rates.
func NewRateLimiter(global, perDomain RateConfig) *RateLimiter {
	return &RateLimiter{
		global:    global.limiter(),
		domains:   make(map[string]*rate.Limiter),
		domainCfg: perDomain,
	}
}

// Wait blocks until both the global bucket and the domain's bucket grant a
// token, or the context is cancelled.
func (l *RateLimiter) Wait(ctx context.Context, domain string) error {
	if err := l.global.Wait(ctx); err != nil {
		return err
	}
	return l.domainLimiter(domain).Wait(ctx)
}

// domainLimiter returns the bucket for a domain, creating it on first use.
func (l *RateLimiter) domainLimiter(domain string) *rate.Limiter {
	domain = strings.ToLower(domain)

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.domains[domain]
	if !ok {
		lim = l.domainCfg.limiter()
		l.domains[domain] = lim
	}
	return lim
}

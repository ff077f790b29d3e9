package httpcache

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// RateLimiter spaces out requests to the same host.
type RateLimiter struct {
	overrides map[string]time.Duration
	last      map[string]time.Time
	locks     map[string]*sync.Mutex
	mu        sync.Mutex
	minDelay  time.Duration
}

// NewRateLimiter creates a RateLimiter with minDelay between requests per host.
// A zero minDelay disables waiting.
func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		minDelay:  minDelay,
		overrides: map[string]time.Duration{},
		last:      map[string]time.Time{},
		locks:     map[string]*sync.Mutex{},
	}
}

// SetDelay overrides the minimum delay for one host.
func (r *RateLimiter) SetDelay(host string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[host] = d
}

// Wait blocks until a request to the host of rawURL is allowed or ctx ends.
func (r *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	host := u.Host

	r.mu.Lock()
	hostMu, ok := r.locks[host]
	if !ok {
		hostMu = &sync.Mutex{}
		r.locks[host] = hostMu
	}
	delay := r.minDelay
	if d, ok := r.overrides[host]; ok {
		delay = d
	}
	r.mu.Unlock()

	hostMu.Lock()
	defer hostMu.Unlock()

	r.mu.Lock()
	last, seen := r.last[host]
	r.mu.Unlock()

	if seen {
		if wait := delay - time.Since(last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	r.mu.Lock()
	r.last[host] = time.Now()
	r.mu.Unlock()
	return nil
}

package helpcenter

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRateLimit is the per-minute limit header.
	HeaderRateLimit = "X-Rate-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-Rate-Limit-Remaining"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// MinBuffer is the minimum remaining requests before pausing.
	MinBuffer = 5

	// defaultRetryAfter applies when a 429 carries no Retry-After header.
	defaultRetryAfter = 60 * time.Second
)

// RateLimiter combines proactive token-bucket throttling with the
// remaining-quota and retry-after hints the API returns.
type RateLimiter struct {
	mu         sync.Mutex
	remaining  int       // From API header, -1 until known
	limit      int       // From API header
	retryAfter time.Time // Pause until this instant
	bucket     *rate.Limiter
}

// NewRateLimiter creates a limiter allowing rps requests per second.
func NewRateLimiter(rps float64) *RateLimiter {
	return &RateLimiter{
		remaining: -1,
		bucket:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	until := r.retryAfter
	low := r.remaining >= 0 && r.remaining < MinBuffer
	r.mu.Unlock()

	if !low && !time.Now().Before(until) {
		return nil
	}

	wait := time.Until(until)
	if wait <= 0 {
		// Low quota without a known reset: quota refills per minute.
		wait = time.Second
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// CheckResponse updates limiter state from resp and returns a
// *RateLimitError when the API refused the request with 429.
func (r *RateLimiter) CheckResponse(resp *http.Response) error {
	if resp == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, err := strconv.Atoi(resp.Header.Get(HeaderRateRemaining)); err == nil {
		r.remaining = v
	}
	if v, err := strconv.Atoi(resp.Header.Get(HeaderRateLimit)); err == nil {
		r.limit = v
	}

	if resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	delay := defaultRetryAfter
	if seconds, err := strconv.Atoi(resp.Header.Get(HeaderRetryAfter)); err == nil && seconds >= 0 {
		delay = time.Duration(seconds) * time.Second
	}
	r.retryAfter = time.Now().Add(delay)

	return &RateLimitError{RetryAt: r.retryAfter}
}

// Remaining returns the last reported remaining quota, or -1 if unknown.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the last reported limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

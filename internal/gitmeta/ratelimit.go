package gitmeta

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// UnauthenticatedLimit is the hourly quota without a token.
	UnauthenticatedLimit = 60

	// ProactiveRate is the steady request rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = rate.Limit(1.2)

	// MinBuffer is the number of requests kept in reserve before waiting
	// for the window to reset.
	MinBuffer = 5

	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
	headerRetryAfter    = "Retry-After"
)

// RateLimiter combines a token bucket with the quota GitHub reports.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetTime time.Time
	bucket    *rate.Limiter
	minBuffer int
}

// NewRateLimiter creates a limiter allowing perSecond requests per second.
func NewRateLimiter(perSecond rate.Limit) *RateLimiter {
	return &RateLimiter{
		remaining: UnauthenticatedLimit,
		limit:     UnauthenticatedLimit,
		bucket:    rate.NewLimiter(perSecond, 1),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining, limit, resetTime := r.remaining, r.limit, r.resetTime
	r.mu.Unlock()

	if remaining >= r.minBuffer || !time.Now().Before(resetTime) {
		return nil
	}

	// Out of quota: fail fast rather than stall a build for up to an hour.
	return &RateLimitError{ResetAt: resetTime, Remaining: remaining, Limit: limit}
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, err := strconv.Atoi(resp.Header.Get(headerRateRemaining)); err == nil {
		r.remaining = v
	}
	if v, err := strconv.Atoi(resp.Header.Get(headerRateLimit)); err == nil {
		r.limit = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get(headerRateReset), 10, 64); err == nil {
		r.resetTime = time.Unix(v, 0)
	}
	if v, err := strconv.Atoi(resp.Header.Get(headerRetryAfter)); err == nil {
		r.resetTime = time.Now().Add(time.Duration(v) * time.Second)
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate keeps a full ingest under the authenticated hourly quota.
	ProactiveRate = 1.2

	// quotaReserve is how many calls are held back once the reported quota runs low.
	quotaReserve = 100

	defaultQuota = 5000
)

// Headers GitHub uses to report the caller's quota.
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset"
)

// quota is the last state GitHub reported.
type quota struct {
	limit     int
	remaining int
	reset     time.Time
}

// RateLimiter paces calls with a token bucket and, when the reported quota
// drops below the reserve, parks callers until the window resets.
type RateLimiter struct {
	bucket *rate.Limiter

	mu    sync.Mutex
	quota quota
}

// NewRateLimiter paces to rps calls per second; rps <= 0 means unpaced.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, 1),
		quota:  quota{limit: defaultQuota, remaining: defaultQuota},
	}
}

// Wait blocks until a call may be made or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	q := r.quota
	r.mu.Unlock()

	if q.remaining >= quotaReserve || !time.Now().Before(q.reset) {
		return nil
	}

	timer := time.NewTimer(time.Until(q.reset))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UpdateFromResponse records the quota headers of resp. Missing or
// malformed headers leave the previous value in place.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := headerInt(resp.Header, HeaderRateRemaining); ok {
		r.quota.remaining = int(v)
	}
	if v, ok := headerInt(resp.Header, HeaderRateLimit); ok {
		r.quota.limit = int(v)
	}
	if v, ok := headerInt(resp.Header, HeaderRateReset); ok {
		r.quota.reset = time.Unix(v, 0)
	}
}

func headerInt(h http.Header, key string) (int64, bool) {
	v, err := strconv.ParseInt(h.Get(key), 10, 64)
	return v, err == nil
}

// Remaining returns the last reported remaining calls.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota.remaining
}

// Limit returns the last reported hourly quota.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota.limit
}

// ResetTime returns when the current quota window ends.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota.reset
}

package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"
)

const (
	// AnonymousQuota is the hourly allowance GitHub grants without a token.
	AnonymousQuota = 60

	// DefaultPace spaces requests at roughly 4300 an hour, under the
	// authenticated quota of 5000.
	DefaultPace rate.Limit = 1.2
)

// Quota is the API allowance GitHub last reported.
type Quota struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Spent reports whether no calls are left before the reset.
func (q Quota) Spent(now time.Time) bool {
	return q.Remaining <= 0 && now.Before(q.Reset)
}

// Throttle paces requests with a token bucket and refuses to call while the
// reported quota is spent, so a query fails fast instead of sleeping until
// the reset.
type Throttle struct {
	mu    sync.Mutex
	quota Quota
	pace  *rate.Limiter
}

// NewThrottle creates a throttle with the given pace. rate.Inf disables
// pacing.
func NewThrottle(pace rate.Limit, burst int) *Throttle {
	return &Throttle{
		quota: Quota{Limit: AnonymousQuota, Remaining: AnonymousQuota},
		pace:  rate.NewLimiter(pace, burst),
	}
}

// Acquire waits for the next request slot.
func (t *Throttle) Acquire(ctx context.Context) error {
	if q := t.Quota(); q.Spent(time.Now()) {
		return &RateLimitError{Quota: q}
	}
	return t.pace.Wait(ctx)
}

// Observe records the allowance a response reported. Responses without
// rate headers leave the quota unchanged.
func (t *Throttle) Observe(r gh.Rate) {
	if r.Limit == 0 && r.Reset.IsZero() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.quota = Quota{Limit: r.Limit, Remaining: r.Remaining, Reset: r.Reset.Time}
}

// Quota returns the last reported allowance.
func (t *Throttle) Quota() Quota {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quota
}

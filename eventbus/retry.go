package eventbus

import (
	"math/rand"
	"time"
)

// RetryPolicy bounds a subscription's retry behavior. A subscription
// inherits the bus-level default unless it supplies its own via
// WithSubscriptionRetryPolicy.
type RetryPolicy struct {
	MaxRetries uint
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	UseJitter  bool
}

// DefaultRetryPolicy returns the spec's default policy: two retries after
// the initial attempt, a one-second base delay capped at thirty seconds,
// with jitter enabled.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		UseJitter:  true,
	}
}

// backoffDelay computes the sleep before retry attempt n (1-based):
// min(baseDelay * 2^(n-1), maxDelay), plus a uniformly random
// [0, 0.1*delay) when jitter is enabled.
func backoffDelay(p RetryPolicy, attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	delay := maxDelay
	if shift := attempt - 1; shift >= 0 && shift < 62 {
		if scaled := base * time.Duration(uint64(1)<<uint(shift)); scaled > 0 && scaled < maxDelay {
			delay = scaled
		}
	}

	if p.UseJitter && delay > 0 {
		delay += time.Duration(rand.Int63n((int64(delay) + 9) / 10))
	}
	return delay
}

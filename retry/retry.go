// Package retry implements bounded exponential backoff with jitter for
// wrapping model-backend calls. Classification of retryable failures is
// injected via ShouldRetry so the package stays free of domain dependencies.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff schedule defaults: delay(k) = min(Base * 2^(k-1), Cap) +/- 25%.
const (
	DefaultBase           = 1 * time.Second
	DefaultCap            = 32 * time.Second
	DefaultJitterFraction = 0.25
	DefaultMaxAttempts    = 3
)

// Policy controls retry behavior for a wrapped call.
type Policy struct {
	// MaxAttempts is the total attempt budget including the first call.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Base is the first-retry delay before jitter.
	Base time.Duration
	// Cap bounds the exponential growth of the delay.
	Cap time.Duration
	// JitterFraction spreads each delay uniformly within
	// [1-f, 1+f] times the exponential value.
	JitterFraction float64
	// ShouldRetry reports whether a failure is transient. When nil every
	// error is retried until the attempt budget runs out.
	ShouldRetry func(error) bool
	// Sleep overrides the delay function, used by tests to avoid real
	// sleeping. Defaults to a context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Base <= 0 {
		p.Base = DefaultBase
	}
	if p.Cap <= 0 {
		p.Cap = DefaultCap
	}
	if p.JitterFraction <= 0 {
		p.JitterFraction = DefaultJitterFraction
	}
	if p.Sleep == nil {
		p.Sleep = sleep
	}
	return p
}

// Delay computes the backoff delay preceding retry attempt+1, with jitter
// applied. attempt is 1-based.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalized()
	backoff := p.Base
	for i := 1; i < attempt && backoff < p.Cap; i++ {
		backoff *= 2
	}
	if backoff > p.Cap {
		backoff = p.Cap
	}
	jitter := 1 + p.JitterFraction*(2*rand.Float64()-1)
	return time.Duration(float64(backoff) * jitter)
}

// Do runs fn up to MaxAttempts times. Between attempts it sleeps for the
// jittered exponential delay, honoring ctx cancellation. onRetry, when
// non-nil, observes each transient failure before the corresponding delay.
// The last error is returned when the budget is exhausted or the failure is
// not retryable.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error, onRetry func(attempt int, err error, delay time.Duration)) error {
	p = p.normalized()
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		if p.ShouldRetry != nil && !p.ShouldRetry(lastErr) {
			break
		}
		delay := p.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt, lastErr, delay)
		}
		if err := p.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

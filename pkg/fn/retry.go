package fn

import (
	"context"
	"time"
)

// Backoff selects how the wait between retry attempts grows.
type Backoff string

const (
	// BackoffExponential waits base * multiplier^attempt.
	BackoffExponential Backoff = "exponential"
	// BackoffLinear waits base + base*multiplier*attempt.
	BackoffLinear Backoff = "linear"
)

// RetryOpts configures retry behavior.
type RetryOpts struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	Strategy    Backoff

	// Sleep waits between attempts. Nil means a context-aware
	// time.After wait; tests inject a recorder here.
	Sleep func(context.Context, time.Duration) error
}

// DefaultRetry provides sensible retry defaults.
var DefaultRetry = RetryOpts{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	Multiplier:  2.0,
	MaxDelay:    10 * time.Second,
	Strategy:    BackoffExponential,
}

// Delay computes the wait before attempt+1, capped at MaxDelay.
// Attempt numbering is zero-based.
func (o RetryOpts) Delay(attempt int) time.Duration {
	base := float64(o.BaseDelay)
	mult := o.Multiplier
	if mult <= 0 {
		mult = 1
	}

	var d float64
	switch o.Strategy {
	case BackoffLinear:
		d = base + base*mult*float64(attempt)
	default:
		d = base
		for i := 0; i < attempt; i++ {
			d *= mult
		}
	}

	if o.MaxDelay > 0 && d > float64(o.MaxDelay) {
		return o.MaxDelay
	}
	return time.Duration(d)
}

func (o RetryOpts) sleep(ctx context.Context, d time.Duration) error {
	if o.Sleep != nil {
		return o.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Retry calls f up to MaxAttempts times, waiting per the backoff strategy
// between attempts. f receives the zero-based attempt number. Attempts are
// strictly sequential: attempt n+1 never starts before attempt n's failure
// is observed and its backoff elapses. On exhaustion the last observed
// error is returned.
func Retry[T any](ctx context.Context, opts RetryOpts, f func(context.Context, int) Result[T]) Result[T] {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	var result Result[T]
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		result = f(ctx, attempt)
		if result.IsOk() {
			return result
		}
		if attempt == opts.MaxAttempts-1 {
			break
		}
		if err := opts.sleep(ctx, opts.Delay(attempt)); err != nil {
			return Err[T](err)
		}
	}
	return result
}

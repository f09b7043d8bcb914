package base

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryPolicy defines bounded exponential retry: after the k-th failed attempt
// it waits Unit * Base^k before trying again, up to MaxAttempts attempts.
type RetryPolicy struct {
	MaxAttempts int
	Base        float64
	Unit        time.Duration

	// ShouldRetry filters faults. A nil filter retries every error.
	ShouldRetry func(error) bool

	// Sleep waits between attempts. A nil Sleep uses a timer bound to ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ExhaustedError is returned when every attempt failed with a retryable error
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// NewRetryPolicy creates a new retry policy with the given ceiling and base
func NewRetryPolicy(maxAttempts int, base float64) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		Base:        base,
		Unit:        time.Second,
	}
}

// Execute runs fn until it succeeds, the filter rejects its error, or the
// attempt ceiling is reached. A rejected error is returned unchanged; running
// out of attempts returns an *ExhaustedError wrapping the last error.
func (rp *RetryPolicy) Execute(ctx context.Context, fn func() error) error {
	_, err := rp.ExecuteCounted(ctx, fn)
	return err
}

// ExecuteCounted is Execute that also reports how many attempts were made
func (rp *RetryPolicy) ExecuteCounted(ctx context.Context, fn func() error) (int, error) {
	maxAttempts := rp.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if rp.ShouldRetry != nil && !rp.ShouldRetry(err) {
			return attempt, err
		}

		if attempt == maxAttempts {
			break
		}

		if err := rp.sleep(ctx, rp.Delay(attempt)); err != nil {
			return attempt, fmt.Errorf("retry cancelled: %w", err)
		}
	}

	return maxAttempts, &ExhaustedError{Attempts: maxAttempts, Last: lastErr}
}

// Delay returns the wait that follows the given failed attempt (1-based)
func (rp *RetryPolicy) Delay(attempt int) time.Duration {
	unit := rp.Unit
	if unit <= 0 {
		unit = time.Second
	}
	return time.Duration(float64(unit) * math.Pow(rp.Base, float64(attempt)))
}

func (rp *RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if rp.Sleep != nil {
		return rp.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsExhausted reports whether err came from running out of attempts
func IsExhausted(err error) bool {
	var e *ExhaustedError
	return errors.As(err, &e)
}

// Clone creates a copy of the retry policy
func (rp *RetryPolicy) Clone() *RetryPolicy {
	c := *rp
	return &c
}

// WithMaxAttempts returns a new policy with updated max attempts
func (rp *RetryPolicy) WithMaxAttempts(attempts int) *RetryPolicy {
	policy := rp.Clone()
	policy.MaxAttempts = attempts
	return policy
}

// WithFilter returns a new policy that only retries errors accepted by fn
func (rp *RetryPolicy) WithFilter(fn func(error) bool) *RetryPolicy {
	policy := rp.Clone()
	policy.ShouldRetry = fn
	return policy
}

// WithSleeper returns a new policy using fn to wait between attempts
func (rp *RetryPolicy) WithSleeper(fn func(ctx context.Context, d time.Duration) error) *RetryPolicy {
	policy := rp.Clone()
	policy.Sleep = fn
	return policy
}

// WithUnit returns a new policy whose delays are measured in unit
func (rp *RetryPolicy) WithUnit(unit time.Duration) *RetryPolicy {
	policy := rp.Clone()
	policy.Unit = unit
	return policy
}

// DefaultRetryPolicy returns three attempts with base-2 second delays
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 3,
		Base:        2,
		Unit:        time.Second,
	}
}

// NoRetryPolicy returns a policy that doesn't retry
func NoRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 1,
		Base:        1,
		Unit:        time.Second,
	}
}

// Package retry implements an exponential backoff policy for retrying
// transient failures of upstream collaborators (connectors, workflow
// engine, object storage, key-value store). No package in this repository
// calls it.
//
// Per spec.md §7, the default policy is 3 attempts, an initial 100ms delay,
// and a ×2 multiplier; authentication failures are never retried.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy configures exponential backoff.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration
	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// Default is the policy mandated by spec.md §7: 3 attempts, 100ms initial
// delay, ×2 multiplier.
var Default = Policy{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	Multiplier:   2,
}

// NotRetryableClassifier is satisfied by errors that can report whether
// they should skip the retry loop entirely — authentication failures per
// spec.md §7, and by extension any other permanent (non-transient) error.
type NotRetryableClassifier interface {
	NotRetryable() bool
}

// IsNotRetryable reports whether err (or anything it wraps) should skip
// retrying per the NotRetryableClassifier interface.
func IsNotRetryable(err error) bool {
	var classifier NotRetryableClassifier
	if errors.As(err, &classifier) {
		return classifier.NotRetryable()
	}
	return false
}

// Do runs fn under the policy, retrying on any error except one for which
// IsNotRetryable reports true. It returns the last error if all attempts
// fail, or nil on the first success. Honors ctx cancellation between
// attempts.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := p.InitialDelay
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if IsNotRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// Do runs fn under the Default policy. Convenience wrapper around
// Default.Do for the common case.
func Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return Default.Do(ctx, fn)
}

package connector

import "fmt"

// TransientError wraps a retryable failure (timeouts, rate limits,
// connection resets). pkg/retry retries these under its backoff policy.
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("connector %s: transient: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// NotRetryable satisfies retry.NotRetryableClassifier; transient errors are
// always retried.
func (e *TransientError) NotRetryable() bool { return false }

// AuthError wraps an authentication/authorization failure (invalid or
// expired credentials). Never retried.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("connector %s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotRetryable satisfies retry.NotRetryableClassifier: authentication
// failures are never retried.
func (e *AuthError) NotRetryable() bool { return true }

// PermanentError wraps a non-retryable failure that isn't an auth problem
// (malformed request, unsupported model, content policy rejection by the
// provider itself).
type PermanentError struct {
	Provider string
	Err      error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("connector %s: permanent: %v", e.Provider, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// NotRetryable satisfies retry.NotRetryableClassifier: a permanent error
// (malformed request, unsupported model, provider-side content rejection)
// won't succeed on retry either.
func (e *PermanentError) NotRetryable() bool { return true }

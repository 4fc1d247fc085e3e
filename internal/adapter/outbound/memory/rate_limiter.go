// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/guardstack/guardstack/internal/domain/interceptor"
)

// windowSize is the fixed-window duration used for admission counting.
const windowSize = 60 * time.Second

// window tracks admission timestamps for a single rate-limit key within the
// current 60-second fixed window.
type window struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// MemoryRateLimiter implements interceptor.RateLimiter using a fixed-window
// counter in memory. Thread-safe for concurrent access.
//
// Unlike a cleanup-on-admission strategy (which only evicts a key's own
// stale timestamps when that key is admitted again, leaving idle keys'
// memory unbounded), this limiter runs a periodic background sweep that
// evicts any key untouched for longer than maxIdle, regardless of whether
// it is ever admitted again.
type MemoryRateLimiter struct {
	mu              sync.Mutex
	windows         map[string]*window
	stopChan        chan struct{}
	wg              sync.WaitGroup
	once            sync.Once
	cleanupInterval time.Duration
	maxIdle         time.Duration
}

// NewRateLimiter creates an in-memory rate limiter with default sweep settings.
// Default cleanup interval: 5 minutes, default maxIdle: 1 hour.
func NewRateLimiter() *MemoryRateLimiter {
	return NewRateLimiterWithConfig(5*time.Minute, 1*time.Hour)
}

// NewRateLimiterWithConfig creates an in-memory rate limiter with custom sweep settings.
func NewRateLimiterWithConfig(cleanupInterval, maxIdle time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows:         make(map[string]*window),
		stopChan:        make(chan struct{}),
		cleanupInterval: cleanupInterval,
		maxIdle:         maxIdle,
	}
}

// Allow admits or rejects key under perMinute, a fixed-window counter over
// the trailing 60 seconds. Timestamps older than the window are dropped on
// every call; when the remaining count is >= perMinute, the call is denied.
func (r *MemoryRateLimiter) Allow(_ context.Context, key string, perMinute int) (interceptor.RateLimitResult, error) {
	if perMinute <= 0 {
		perMinute = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-windowSize)

	w, exists := r.windows[key]
	if !exists {
		w = &window{}
		r.windows[key] = w
	}
	w.lastSeen = now

	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept

	if len(w.timestamps) >= perMinute {
		oldest := w.timestamps[0]
		return interceptor.RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetAfter: oldest.Add(windowSize).Sub(now),
		}, nil
	}

	w.timestamps = append(w.timestamps, now)
	remaining := perMinute - len(w.timestamps)

	return interceptor.RateLimitResult{
		Allowed:    true,
		Remaining:  remaining,
		ResetAfter: windowSize,
	}, nil
}

// StartCleanup starts the background sweep goroutine. It periodically
// removes keys whose window has been idle for longer than maxIdle. It stops
// when ctx is cancelled or Stop() is called.
func (r *MemoryRateLimiter) StartCleanup(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			case <-ticker.C:
				r.cleanup()
			}
		}
	}()
}

// cleanup removes windows idle for longer than maxIdle. Acquires the lock
// and should only be called by the background sweep goroutine.
func (r *MemoryRateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.maxIdle)
	cleaned := 0

	for key, w := range r.windows {
		if w.lastSeen.Before(cutoff) {
			delete(r.windows, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		slog.Debug("rate limiter sweep completed",
			"cleaned_keys", cleaned,
			"remaining_keys", len(r.windows))
	}
}

// Stop gracefully stops the sweep goroutine and waits for it to exit.
// Safe to call multiple times.
func (r *MemoryRateLimiter) Stop() {
	r.once.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
}

// Size returns the current number of tracked keys.
func (r *MemoryRateLimiter) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}

// Compile-time interface verification.
var _ interceptor.RateLimiter = (*MemoryRateLimiter)(nil)

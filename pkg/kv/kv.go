// Package kv defines the key-value store contract used for rate-limit
// counters, pub/sub notifications, and a priority queue over evaluation
// jobs (spec.md §6). Store has two implementations: MemoryStore for tests
// and single-process deployments, and a github.com/redis/go-redis/v9-backed
// RedisStore for a shared, multi-process control plane.
package kv

import (
	"context"
	"time"
)

// ZMember is one entry in a priority queue (a Redis-style sorted set used
// as a min-heap: ZPopMin returns the lowest-scored member first).
type ZMember struct {
	Member string
	Score  float64
}

// Store is the key-value capability consumed by distributed rate limiting
// and job queueing.
type Store interface {
	// Get returns the value for key, and false if it doesn't exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetTTL sets key to value, expiring after ttl (0 = no expiry).
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Scan returns keys matching a glob pattern (e.g. "session:*").
	Scan(ctx context.Context, pattern string) ([]string, error)

	// Publish sends message on channel to current subscribers.
	Publish(ctx context.Context, channel, message string) error

	// Subscribe returns a channel of messages published to channel, closed
	// when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan string, error)

	// ZAdd adds member with score to the sorted set at key.
	ZAdd(ctx context.Context, key string, member ZMember) error

	// ZPopMin removes and returns the lowest-scored member of the sorted
	// set at key, and false if the set is empty.
	ZPopMin(ctx context.Context, key string) (ZMember, bool, error)

	// IncrTTL atomically increments key by 1, sets ttl on first creation
	// (when the key didn't already exist), and returns the new value: a
	// shared, cross-process fixed-window counter primitive. The in-process
	// rate limiter does not use it.
	IncrTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

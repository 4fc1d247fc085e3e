// Package objectstore defines the contract used to persist evaluation
// artifacts and rendered reports (spec.md §6). A concrete S3/GCS/MinIO
// adapter is out of scope for the core; this package is the seam plus an
// in-memory store for tests and local development.
package objectstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a key doesn't exist in the store.
var ErrNotFound = errors.New("objectstore: not found")

// Object is a stored blob plus its metadata.
type Object struct {
	Bytes       []byte
	ContentType string
	Metadata    map[string]string
}

// ListEntry describes one key returned by List.
type ListEntry struct {
	Key  string
	Size int64
}

// Page is one page of a List call.
type Page struct {
	Entries    []ListEntry
	NextCursor string // empty when there are no more pages
}

// PresignMethod selects the HTTP method a presigned URL authorizes.
type PresignMethod string

const (
	PresignGET      PresignMethod = "GET"
	PresignPOSTForm PresignMethod = "POST"
)

// PresignedPOST carries the fields a browser form must submit alongside the
// file to satisfy a presigned POST upload.
type PresignedPOST struct {
	URL    string
	Fields map[string]string
}

// Store is the object storage capability consumed by evaluation artifact
// and report persistence.
type Store interface {
	// Upload stores bytes under (bucket, key) and returns a reference URL.
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (url string, err error)

	// Download retrieves the object at (bucket, key).
	Download(ctx context.Context, bucket, key string) (Object, error)

	// Exists reports whether (bucket, key) is present.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// List returns keys under bucket with the given prefix, paged via cursor.
	// Pass an empty cursor to start from the beginning.
	List(ctx context.Context, bucket, prefix, cursor string, limit int) (Page, error)

	// Delete removes (bucket, key). Deleting a missing key is not an error.
	Delete(ctx context.Context, bucket, key string) error

	// PresignGET returns a time-limited GET URL for (bucket, key).
	PresignGET(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)

	// PresignPOSTForm returns a time-limited browser-uploadable form for
	// (bucket, key).
	PresignPOSTForm(ctx context.Context, bucket, key string, expiry time.Duration) (PresignedPOST, error)
}

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object // key: bucket + "/" + key
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func fullKey(bucket, key string) string { return bucket + "/" + key }

func (s *MemoryStore) Upload(_ context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[fullKey(bucket, key)] = Object{Bytes: cp, ContentType: contentType, Metadata: metadata}
	return "memory://" + fullKey(bucket, key), nil
}

func (s *MemoryStore) Download(_ context.Context, bucket, key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[fullKey(bucket, key)]
	if !ok {
		return Object{}, ErrNotFound
	}
	return obj, nil
}

func (s *MemoryStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[fullKey(bucket, key)]
	return ok, nil
}

func (s *MemoryStore) List(_ context.Context, bucket, prefix, cursor string, limit int) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := bucket + "/"
	var keys []string
	for k := range s.objects {
		if len(k) > len(base) && k[:len(base)] == base && len(k[len(base):]) >= len(prefix) && k[len(base):len(base)+len(prefix)] == prefix {
			keys = append(keys, k[len(base):])
		}
	}
	sort.Strings(keys)

	start := 0
	if cursor != "" {
		for i, k := range keys {
			if k == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 1000
	}

	page := Page{}
	end := start + limit
	if end > len(keys) {
		end = len(keys)
	}
	for _, k := range keys[start:end] {
		page.Entries = append(page.Entries, ListEntry{Key: k, Size: int64(len(s.objects[fullKey(bucket, k)].Bytes))})
	}
	if end < len(keys) {
		page.NextCursor = keys[end-1]
	}
	return page, nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, fullKey(bucket, key))
	return nil
}

func (s *MemoryStore) PresignGET(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return "memory://" + fullKey(bucket, key) + "?expires=" + expiry.String(), nil
}

func (s *MemoryStore) PresignPOSTForm(_ context.Context, bucket, key string, expiry time.Duration) (PresignedPOST, error) {
	return PresignedPOST{
		URL:    "memory://" + bucket,
		Fields: map[string]string{"key": key, "expires": expiry.String()},
	}, nil
}

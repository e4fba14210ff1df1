// Package storage provides the durable blob tier. Job artifacts and their
// metadata documents live under tenant-prefixed keys, so the store doubles as
// the system of record for job state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a key that does not exist. Callers probe for metadata
// documents during job resolution, so this is a normal outcome, not a fault.
var ErrNotFound = errors.New("storage: object not found")

// ObjectInfo describes a stored object without its payload.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is the blob tier contract. Keys are slash-separated paths relative to
// the store root, always beginning with a tenant prefix.
type Store interface {
	// Put persists data under key and returns the canonical key.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Get returns the full payload stored at key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Head returns object metadata without reading the payload.
	Head(ctx context.Context, key string) (ObjectInfo, error)
	// List returns the keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Presign returns a time-limited URL for direct download of key.
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

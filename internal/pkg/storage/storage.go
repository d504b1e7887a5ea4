// Package storage reads and writes whole objects in a single bucket of an
// object store (S3, GCS or MinIO).
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned when the requested object is missing.
var ErrNotExist = errors.New("storage: object does not exist")

// Bucket stores small objects by key inside one bucket.
type Bucket interface {
	io.Closer

	// Put creates or replaces the object at key.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the object contents or ErrNotExist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every key under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Package docstore is a small JSON document store keyed by collection and
// document ID.
//
// Documents are opaque JSON. Each write may carry an Index of string fields
// that FindOne can look documents up by; the store does not enforce
// uniqueness on indexed values, callers check with FindOne first.
//
// Drivers: Memory (process local), Postgres (JSONB rows, goose migrations),
// Redis (string keys plus lookup keys) and Object (one object per document
// in an S3/GCS/MinIO bucket).
package docstore

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrConflict is returned by Create when the ID is taken.
	ErrConflict = errors.New("docstore: document already exists")
	// ErrInvalidArgument is returned for an empty collection, ID or field.
	ErrInvalidArgument = errors.New("docstore: collection, id and field are required")
)

// Index maps field names to the values FindOne matches on.
type Index map[string]string

// Store persists JSON documents.
type Store interface {
	io.Closer

	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	// Create inserts a new document or returns ErrConflict.
	Create(ctx context.Context, collection, id string, data []byte, index Index) error
	// Put inserts or fully replaces a document and its index.
	Put(ctx context.Context, collection, id string, data []byte, index Index) error
	// Delete removes the document or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// List returns every document in the collection ordered by ID.
	List(ctx context.Context, collection string) ([][]byte, error)
	// FindOne returns the first document, by ID, whose index holds value at
	// field, or ErrNotFound.
	FindOne(ctx context.Context, collection, field, value string) ([]byte, error)
}

func checkKey(collection, id string) error {
	if collection == "" || id == "" {
		return ErrInvalidArgument
	}
	return nil
}

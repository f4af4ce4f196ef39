package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no entry exists for the given key.
	ErrNotFound = errors.New("entry not found")
	// ErrEmptyKey is returned when a write names no key.
	ErrEmptyKey = errors.New("entry key is required")
)

// Change is a single write of a Batch. Delete removes the key and ignores
// Value.
type Change struct {
	Key    string
	Value  string
	Delete bool
}

// KeyValueStore defines the interface for persisting named value blobs
type KeyValueStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Entry operations
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Batch applies all changes or none of them.
	Batch(ctx context.Context, changes ...Change) error
}

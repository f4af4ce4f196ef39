package store

import (
	"context"
	"sync"
)

// MemoryStore implements KeyValueStore in process memory. Its content is lost
// once the process exits.
type MemoryStore struct {
	mutex   sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
	}
}

func (s *MemoryStore) Connect(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Health(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *MemoryStore) Put(ctx context.Context, key, value string) error {
	return s.Batch(ctx, Change{Key: key, Value: value})
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	return s.Batch(ctx, Change{Key: key, Delete: true})
}

func (s *MemoryStore) Batch(ctx context.Context, changes ...Change) error {
	for _, change := range changes {
		if change.Key == "" {
			return ErrEmptyKey
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, change := range changes {
		if change.Delete {
			delete(s.entries, change.Key)
		} else {
			s.entries[change.Key] = change.Value
		}
	}
	return nil
}

package uploads

import (
	"context"
	"sync"
)

// InMemoryRepository is a map-backed Repository for tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{keys: make(map[string]struct{})}
}

func (r *InMemoryRepository) MarkUploaded(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key] = struct{}{}
	return nil
}

func (r *InMemoryRepository) IsUploaded(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.keys[key]
	return ok, nil
}

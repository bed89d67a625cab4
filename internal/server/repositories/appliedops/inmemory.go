package appliedops

import (
	"context"
	"sync"

	"github.com/dkazakevich/studykeeper/internal/server/models"
)

// InMemoryRepository is a map-backed Repository for tests.
type InMemoryRepository struct {
	mu  sync.RWMutex
	ops map[string]*models.AppliedOp
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{ops: make(map[string]*models.AppliedOp)}
}

func (r *InMemoryRepository) Lookup(ctx context.Context, opID string) (*models.AppliedOp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[opID]
	if !ok {
		return nil, nil
	}
	cp := *op
	return &cp, nil
}

func (r *InMemoryRepository) Record(ctx context.Context, op *models.AppliedOp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *op
	r.ops[op.OpID] = &cp
	return nil
}

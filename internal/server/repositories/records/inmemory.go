package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/server/models"
)

// InMemoryRepository is a map-backed Repository for tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*models.Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*models.Record)}
}

func (r *InMemoryRepository) Insert(ctx context.Context, rec *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.rows[rec.RemoteID] = &cp
	return nil
}

func (r *InMemoryRepository) Update(ctx context.Context, remoteID string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[remoteID]
	if !ok || rec.Deleted {
		return common.ErrorNotFound
	}
	rec.Payload = payload
	rec.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, remoteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[remoteID]
	if !ok {
		return common.ErrorNotFound
	}
	rec.Deleted = true
	rec.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, remoteID string) (*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.rows[remoteID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.Record
	for _, rec := range r.rows {
		if rec.OwnerID == ownerID && !rec.Deleted {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkazakevich/studykeeper/internal/dbx"
	"github.com/dkazakevich/studykeeper/internal/server/repositories/appliedops"
	"github.com/dkazakevich/studykeeper/internal/server/repositories/records"
	"github.com/dkazakevich/studykeeper/internal/server/repositories/uploads"
)

// InMemoryRepositoryManager vends shared in-memory repositories. The same
// instances are returned on every call, so state persists across requests
// within a test.
type InMemoryRepositoryManager struct {
	records    *records.InMemoryRepository
	appliedOps *appliedops.InMemoryRepository
	uploads    *uploads.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		records:    records.NewInMemoryRepository(),
		appliedOps: appliedops.NewInMemoryRepository(),
		uploads:    uploads.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return m.records
}

func (m *InMemoryRepositoryManager) AppliedOps(db dbx.DBTX) appliedops.Repository {
	return m.appliedOps
}

func (m *InMemoryRepositoryManager) Uploads(db dbx.DBTX) uploads.Repository {
	return m.uploads
}

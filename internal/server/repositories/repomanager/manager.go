package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkazakevich/studykeeper/internal/dbx"
	"github.com/dkazakevich/studykeeper/internal/server/repositories/appliedops"
	"github.com/dkazakevich/studykeeper/internal/server/repositories/records"
	"github.com/dkazakevich/studykeeper/internal/server/repositories/uploads"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Records(db dbx.DBTX) records.Repository
	AppliedOps(db dbx.DBTX) appliedops.Repository
	Uploads(db dbx.DBTX) uploads.Repository
}

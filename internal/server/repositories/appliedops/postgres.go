package appliedops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkazakevich/studykeeper/internal/dbx"
	"github.com/dkazakevich/studykeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Lookup(ctx context.Context, opID string) (*models.AppliedOp, error) {
	var op models.AppliedOp
	err := r.db.QueryRowContext(ctx,
		`SELECT op_id, remote_id, applied_at FROM applied_ops WHERE op_id=$1`, opID).
		Scan(&op.OpID, &op.RemoteID, &op.AppliedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &op, nil
}

func (r *PostgresRepository) Record(ctx context.Context, op *models.AppliedOp) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applied_ops (op_id, remote_id, applied_at) VALUES ($1, $2, $3)`,
		op.OpID, op.RemoteID, op.AppliedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

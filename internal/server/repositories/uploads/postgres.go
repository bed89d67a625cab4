package uploads

import (
	"context"
	"fmt"

	"github.com/dkazakevich/studykeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO uploads (storage_key, uploaded_at) VALUES ($1, now()) ON CONFLICT (storage_key) DO NOTHING`,
		key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsUploaded(ctx context.Context, key string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM uploads WHERE storage_key=$1`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

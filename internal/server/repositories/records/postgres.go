// Package records provides the server-side record store: PostgreSQL-backed
// in production, in-memory for tests.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/dbx"
	"github.com/dkazakevich/studykeeper/internal/server/models"
)

// PostgresRepository implements record storage over a dbx.DBTX (*sql.DB or
// *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.Record) error {
	query := `
		INSERT INTO records (remote_id, entity_type, owner_id, payload, created_at, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.RemoteID, rec.EntityType, rec.OwnerID, rec.Payload, rec.CreatedAt, rec.UpdatedAt, rec.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, remoteID string, payload []byte) error {
	query := `
		UPDATE records SET payload=$1, updated_at=now()
		WHERE remote_id=$2 AND deleted=false
	`
	res, err := r.db.ExecContext(ctx, query, payload, remoteID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, remoteID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET deleted=true, updated_at=now() WHERE remote_id=$1 AND deleted=false`,
		remoteID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Distinguish an already-tombstoned record from an unknown one.
	var deleted bool
	err = r.db.QueryRowContext(ctx, `SELECT deleted FROM records WHERE remote_id=$1`, remoteID).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, remoteID string) (*models.Record, error) {
	query := `
		SELECT remote_id, entity_type, owner_id, payload, created_at, updated_at, deleted
		FROM records WHERE remote_id=$1
	`
	var rec models.Record
	err := r.db.QueryRowContext(ctx, query, remoteID).Scan(
		&rec.RemoteID, &rec.EntityType, &rec.OwnerID, &rec.Payload,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error) {
	query := `
		SELECT remote_id, entity_type, owner_id, payload, created_at, updated_at, deleted
		FROM records WHERE owner_id=$1 AND deleted=false
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(
			&rec.RemoteID, &rec.EntityType, &rec.OwnerID, &rec.Payload,
			&rec.CreatedAt, &rec.UpdatedAt, &rec.Deleted,
		); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

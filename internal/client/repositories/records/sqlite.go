package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/models"
	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx), so entity writes can share a transaction with mutation-log
// appends.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Put upserts a record by local id.
func (r *SQLiteRepository) Put(ctx context.Context, rec *models.Record) error {
	query := `INSERT INTO records (local_id, entity_type, remote_id, owner_id, payload, created_at, updated_at, deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(local_id) DO UPDATE SET
				remote_id = excluded.remote_id,
				owner_id = excluded.owner_id,
				payload = excluded.payload,
				updated_at = excluded.updated_at,
				deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.LocalID, string(rec.Type), nullable(rec.RemoteID), rec.OwnerID, []byte(rec.Payload),
		rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(), rec.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// Get returns a record by type and local id, tombstoned or not.
func (r *SQLiteRepository) Get(ctx context.Context, t models.EntityType, localID string) (*models.Record, error) {
	query := `SELECT local_id, entity_type, remote_id, owner_id, payload, created_at, updated_at, deleted
		FROM records WHERE entity_type=? AND local_id=?`
	row := r.db.QueryRowContext(ctx, query, string(t), localID)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// Query returns non-tombstoned records of a type matching the predicate,
// oldest first.
func (r *SQLiteRepository) Query(ctx context.Context, t models.EntityType, p Predicate) ([]*models.Record, error) {
	query := `SELECT local_id, entity_type, remote_id, owner_id, payload, created_at, updated_at, deleted
		FROM records WHERE entity_type=? AND deleted=0 ORDER BY created_at, local_id`
	rows, err := r.db.QueryContext(ctx, query, string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		if p == nil || p(rec) {
			result = append(result, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkDeleted tombstones a record. It expects exactly one row to be affected.
func (r *SQLiteRepository) MarkDeleted(ctx context.Context, t models.EntityType, localID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET deleted=1 WHERE entity_type=? AND local_id=? AND deleted=0`,
		string(t), localID)
	if err != nil {
		return fmt.Errorf("failed to tombstone record: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete physically removes a record.
func (r *SQLiteRepository) Delete(ctx context.Context, t models.EntityType, localID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE entity_type=? AND local_id=?`, string(t), localID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// ReassignID stores the server-issued remote id. Idempotent on the same
// mapping; a different remote id for an already-assigned record is a
// reconciler bug and is reported, never overwritten.
func (r *SQLiteRepository) ReassignID(ctx context.Context, t models.EntityType, localID, remoteID string) error {
	rec, err := r.Get(ctx, t, localID)
	if err != nil {
		return err
	}
	switch rec.RemoteID {
	case "":
		_, err := r.db.ExecContext(ctx,
			`UPDATE records SET remote_id=? WHERE entity_type=? AND local_id=?`,
			remoteID, string(t), localID)
		if err != nil {
			return fmt.Errorf("failed to assign remote id: %w", err)
		}
		return nil
	case remoteID:
		return nil
	default:
		return fmt.Errorf("record %s/%s already mapped to %s, refusing %s: %w",
			t, localID, rec.RemoteID, remoteID, common.ErrRemoteIDConflict)
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	var (
		rec       models.Record
		entType   string
		remoteID  sql.NullString
		payload   []byte
		createdAt int64
		updatedAt int64
	)
	if err := scan(&rec.LocalID, &entType, &remoteID, &rec.OwnerID, &payload,
		&createdAt, &updatedAt, &rec.Deleted); err != nil {
		return nil, err
	}
	rec.Type = models.EntityType(entType)
	rec.RemoteID = remoteID.String
	rec.Payload = payload
	rec.CreatedAt = time.Unix(0, createdAt)
	rec.UpdatedAt = time.Unix(0, updatedAt)
	return &rec, nil
}

package oplog

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

const mutationColumns = `sequence, op_id, operation, entity_type, target_local_id, payload,
	created_at, synced, superseded, terminal, acked, attempt_count, not_before, last_error`

// SQLiteLog implements Log over a DBTX (*sql.DB or *sql.Tx).
type SQLiteLog struct {
	db dbx.DBTX
}

// NewSQLiteLog returns a mutation log bound to the given DBTX.
func NewSQLiteLog(db dbx.DBTX) *SQLiteLog {
	return &SQLiteLog{db: db}
}

// Append inserts the entry and fills in its assigned sequence. A delete
// first supersedes every earlier unresolved entry for the same target; those
// entries stay in the log for audit but are never sent.
func (l *SQLiteLog) Append(ctx context.Context, m *models.Mutation) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	if m.Op == models.OpDelete {
		_, err := l.db.ExecContext(ctx, `
			UPDATE oplog SET superseded=1
			WHERE entity_type=? AND target_local_id=? AND synced=0 AND superseded=0 AND acked=0`,
			string(m.Type), m.TargetLocalID)
		if err != nil {
			return fmt.Errorf("failed to supersede earlier entries: %w", err)
		}
	}

	res, err := l.db.ExecContext(ctx, `
		INSERT INTO oplog (op_id, operation, entity_type, target_local_id, payload, created_at, not_before, last_error)
		VALUES (?, ?, ?, ?, ?, ?, 0, '')`,
		m.OpID, string(m.Op), string(m.Type), m.TargetLocalID, []byte(m.Payload), m.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to append mutation: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get assigned sequence: %w", err)
	}
	m.Sequence = seq
	return nil
}

// PeekBatch returns the oldest unresolved entries in sequence order.
func (l *SQLiteLog) PeekBatch(ctx context.Context, maxN int) ([]*models.Mutation, error) {
	query := `SELECT ` + mutationColumns + ` FROM oplog
		WHERE synced=0 AND superseded=0 AND acked=0
		ORDER BY sequence LIMIT ?`
	rows, err := l.db.QueryContext(ctx, query, maxN)
	if err != nil {
		return nil, fmt.Errorf("failed to select mutations: %w", err)
	}
	defer rows.Close()

	return collectMutations(rows)
}

// Get returns one entry by sequence.
func (l *SQLiteLog) Get(ctx context.Context, sequence int64) (*models.Mutation, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT `+mutationColumns+` FROM oplog WHERE sequence=?`, sequence)
	m, err := scanMutation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mutation: %w", err)
	}
	return m, nil
}

// MarkSynced marks an entry applied by the server.
func (l *SQLiteLog) MarkSynced(ctx context.Context, sequence int64) error {
	return l.markOne(ctx, sequence, `UPDATE oplog SET synced=1 WHERE sequence=? AND synced=0`)
}

// MarkFailed records a retryable failure and schedules the next attempt.
func (l *SQLiteLog) MarkFailed(ctx context.Context, sequence int64, notBefore time.Time, cause string) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE oplog SET attempt_count=attempt_count+1, not_before=?, last_error=?
		WHERE sequence=? AND synced=0 AND terminal=0`,
		notBefore.UnixNano(), cause, sequence)
	if err != nil {
		return fmt.Errorf("failed to mark mutation failed: %w", err)
	}
	return expectOneRow(res)
}

// MarkTerminal demotes an entry to a terminal failure.
func (l *SQLiteLog) MarkTerminal(ctx context.Context, sequence int64, cause string) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE oplog SET terminal=1, last_error=?
		WHERE sequence=? AND synced=0 AND terminal=0`,
		cause, sequence)
	if err != nil {
		return fmt.Errorf("failed to mark mutation terminal: %w", err)
	}
	return expectOneRow(res)
}

// Ack discards a terminal failure.
func (l *SQLiteLog) Ack(ctx context.Context, sequence int64) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE oplog SET acked=1 WHERE sequence=? AND terminal=1 AND acked=0`, sequence)
	if err != nil {
		return fmt.Errorf("failed to ack mutation: %w", err)
	}
	return expectOneRow(res)
}

// TerminalFailures lists unacked terminal entries, oldest first.
func (l *SQLiteLog) TerminalFailures(ctx context.Context) ([]*models.Mutation, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+mutationColumns+` FROM oplog WHERE terminal=1 AND superseded=0 AND acked=0 ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("failed to select terminal failures: %w", err)
	}
	defer rows.Close()

	return collectMutations(rows)
}

// Counts reports pending and terminal-unacked totals.
func (l *SQLiteLog) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := l.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE synced=0 AND superseded=0 AND terminal=0),
			COUNT(*) FILTER (WHERE terminal=1 AND superseded=0 AND acked=0)
		FROM oplog`).Scan(&c.Pending, &c.TerminalFailures)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count mutations: %w", err)
	}
	return c, nil
}

func (l *SQLiteLog) markOne(ctx context.Context, sequence int64, query string) error {
	res, err := l.db.ExecContext(ctx, query, sequence)
	if err != nil {
		return fmt.Errorf("failed to mark mutation: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

func collectMutations(rows *sql.Rows) ([]*models.Mutation, error) {
	var result []*models.Mutation
	for rows.Next() {
		m, err := scanMutation(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanMutation(scan func(dest ...any) error) (*models.Mutation, error) {
	var (
		m         models.Mutation
		op        string
		entType   string
		payload   []byte
		createdAt int64
		notBefore int64
	)
	if err := scan(&m.Sequence, &m.OpID, &op, &entType, &m.TargetLocalID, &payload,
		&createdAt, &m.Synced, &m.Superseded, &m.Terminal, &m.Acked,
		&m.AttemptCount, &notBefore, &m.LastError); err != nil {
		return nil, err
	}
	m.Op = models.Operation(op)
	m.Type = models.EntityType(entType)
	m.Payload = payload
	m.CreatedAt = time.Unix(0, createdAt)
	if notBefore != 0 {
		m.NotBefore = time.Unix(0, notBefore)
	}
	return &m, nil
}

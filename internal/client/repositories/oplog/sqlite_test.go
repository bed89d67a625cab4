package oplog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/models"
	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE oplog (
  sequence INTEGER PRIMARY KEY AUTOINCREMENT,
  op_id TEXT NOT NULL UNIQUE,
  operation TEXT NOT NULL,
  entity_type TEXT NOT NULL,
  target_local_id TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at INTEGER NOT NULL,
  synced INTEGER NOT NULL DEFAULT 0,
  superseded INTEGER NOT NULL DEFAULT 0,
  terminal INTEGER NOT NULL DEFAULT 0,
  acked INTEGER NOT NULL DEFAULT 0,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  not_before INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)

	return db
}

func newMutation(op models.Operation, target string) *models.Mutation {
	return &models.Mutation{
		OpID:          uuid.NewString(),
		Op:            op,
		Type:          models.EntityTypeNote,
		TargetLocalID: target,
		Payload:       []byte(`{"title":"t"}`),
	}
}

func TestAppend_AssignsMonotonicSequence(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	m1 := newMutation(models.OpCreate, "n1")
	m2 := newMutation(models.OpUpdate, "n1")
	m3 := newMutation(models.OpCreate, "n2")

	require.NoError(t, l.Append(ctx, m1))
	require.NoError(t, l.Append(ctx, m2))
	require.NoError(t, l.Append(ctx, m3))

	assert.Less(t, m1.Sequence, m2.Sequence)
	assert.Less(t, m2.Sequence, m3.Sequence)
}

func TestPeekBatch_SequenceOrderAndLimit(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, newMutation(models.OpUpdate, "n1")))
	}

	batch, err := l.PeekBatch(ctx, 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, int64(1), batch[0].Sequence)
	assert.Equal(t, int64(2), batch[1].Sequence)
	assert.Equal(t, int64(3), batch[2].Sequence)
}

func TestPeekBatch_SkipsResolvedKeepsTerminal(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	synced := newMutation(models.OpCreate, "a")
	terminal := newMutation(models.OpUpdate, "a")
	pending := newMutation(models.OpUpdate, "a")
	require.NoError(t, l.Append(ctx, synced))
	require.NoError(t, l.Append(ctx, terminal))
	require.NoError(t, l.Append(ctx, pending))

	require.NoError(t, l.MarkSynced(ctx, synced.Sequence))
	require.NoError(t, l.MarkTerminal(ctx, terminal.Sequence, "rejected"))

	batch, err := l.PeekBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2, "synced entries drop out, terminal-unacked stay visible")
	assert.Equal(t, terminal.Sequence, batch[0].Sequence)
	assert.True(t, batch[0].Blocking())
	assert.Equal(t, pending.Sequence, batch[1].Sequence)

	// acking the terminal failure removes it from the batch
	require.NoError(t, l.Ack(ctx, terminal.Sequence))
	batch, err = l.PeekBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, pending.Sequence, batch[0].Sequence)
}

func TestAppend_DeleteSupersedesEarlierEntries(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	create := newMutation(models.OpCreate, "n1")
	update := newMutation(models.OpUpdate, "n1")
	other := newMutation(models.OpCreate, "n2")
	require.NoError(t, l.Append(ctx, create))
	require.NoError(t, l.Append(ctx, update))
	require.NoError(t, l.Append(ctx, other))

	del := newMutation(models.OpDelete, "n1")
	require.NoError(t, l.Append(ctx, del))

	batch, err := l.PeekBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2, "superseded entries must not be drained")
	assert.Equal(t, other.Sequence, batch[0].Sequence)
	assert.Equal(t, del.Sequence, batch[1].Sequence)

	// superseded entries stay in the log for audit
	got, err := l.Get(ctx, create.Sequence)
	require.NoError(t, err)
	assert.True(t, got.Superseded)
	assert.True(t, got.Resolved())
}

func TestAppend_DeleteDoesNotSupersedeSyncedEntries(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	create := newMutation(models.OpCreate, "n1")
	require.NoError(t, l.Append(ctx, create))
	require.NoError(t, l.MarkSynced(ctx, create.Sequence))

	require.NoError(t, l.Append(ctx, newMutation(models.OpDelete, "n1")))

	got, err := l.Get(ctx, create.Sequence)
	require.NoError(t, err)
	assert.False(t, got.Superseded, "applied history is not rewritten")
	assert.True(t, got.Synced)
}

func TestAppend_DeleteSupersedesTerminalFailure(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	create := newMutation(models.OpCreate, "n1")
	require.NoError(t, l.Append(ctx, create))
	require.NoError(t, l.MarkTerminal(ctx, create.Sequence, "rejected"))

	del := newMutation(models.OpDelete, "n1")
	require.NoError(t, l.Append(ctx, del))

	// The delete resolves the target, so the failure no longer needs an
	// ack and must not surface in status output.
	got, err := l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Pending: 1, TerminalFailures: 0}, got)

	failures, err := l.TerminalFailures(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)

	batch, err := l.PeekBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, del.Sequence, batch[0].Sequence)
}

func TestMarkFailed_IncrementsAttemptsAndKeepsEntry(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	m := newMutation(models.OpCreate, "n1")
	require.NoError(t, l.Append(ctx, m))

	deadline := time.Now().Add(30 * time.Second)
	require.NoError(t, l.MarkFailed(ctx, m.Sequence, deadline, "connection refused"))
	require.NoError(t, l.MarkFailed(ctx, m.Sequence, deadline, "timeout"))

	got, err := l.Get(ctx, m.Sequence)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AttemptCount)
	assert.Equal(t, "timeout", got.LastError)
	assert.Equal(t, deadline.UnixNano(), got.NotBefore.UnixNano())
	assert.False(t, got.Synced)
}

func TestMarkSynced_Terminal_Ack_StateGuards(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	m := newMutation(models.OpCreate, "n1")
	require.NoError(t, l.Append(ctx, m))

	// ack before terminal is invalid
	require.ErrorIs(t, l.Ack(ctx, m.Sequence), common.ErrorNotFound)

	require.NoError(t, l.MarkSynced(ctx, m.Sequence))

	// a synced entry can not fail or become terminal afterwards
	require.ErrorIs(t, l.MarkSynced(ctx, m.Sequence), common.ErrorNotFound)
	require.ErrorIs(t, l.MarkFailed(ctx, m.Sequence, time.Now(), "late"), common.ErrorNotFound)
	require.ErrorIs(t, l.MarkTerminal(ctx, m.Sequence, "late"), common.ErrorNotFound)
}

func TestCounts(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	a := newMutation(models.OpCreate, "a")
	b := newMutation(models.OpCreate, "b")
	c := newMutation(models.OpCreate, "c")
	d := newMutation(models.OpCreate, "d")
	for _, m := range []*models.Mutation{a, b, c, d} {
		require.NoError(t, l.Append(ctx, m))
	}

	require.NoError(t, l.MarkSynced(ctx, a.Sequence))
	require.NoError(t, l.MarkTerminal(ctx, b.Sequence, "validation"))

	got, err := l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Pending: 2, TerminalFailures: 1}, got)

	require.NoError(t, l.Ack(ctx, b.Sequence))
	got, err = l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Pending: 2, TerminalFailures: 0}, got)
}

func TestTerminalFailures_Listing(t *testing.T) {
	db := setupDB(t)
	l := NewSQLiteLog(db)
	ctx := context.Background()

	m1 := newMutation(models.OpCreate, "a")
	m2 := newMutation(models.OpUpdate, "b")
	require.NoError(t, l.Append(ctx, m1))
	require.NoError(t, l.Append(ctx, m2))
	require.NoError(t, l.MarkTerminal(ctx, m2.Sequence, "subject does not exist"))

	failures, err := l.TerminalFailures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, m2.Sequence, failures[0].Sequence)
	assert.Equal(t, "subject does not exist", failures[0].LastError)
}

package sync

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/models"
	"github.com/dkazakevich/studykeeper/internal/client/remote"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/oplog"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/records"
	"github.com/dkazakevich/studykeeper/internal/logging"
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
CREATE TABLE records (
  local_id TEXT PRIMARY KEY,
  entity_type TEXT NOT NULL,
  remote_id TEXT,
  owner_id TEXT NOT NULL DEFAULT '',
  payload BLOB NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

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

// fakeRemote scripts Apply outcomes per op id and records call order.
type fakeRemote struct {
	mu      sync.Mutex
	acks    map[string]*remote.Ack
	errs    map[string]error
	applied []string

	// applyHook, when set, runs at the start of every Apply. Tests use it
	// to hold a dispatch in flight.
	applyHook func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{acks: map[string]*remote.Ack{}, errs: map[string]error{}}
}

func (f *fakeRemote) Close() error                   { return nil }
func (f *fakeRemote) Ping(ctx context.Context) error { return nil }

func (f *fakeRemote) Apply(ctx context.Context, m *models.Mutation, remoteID, ownerID string) (*remote.Ack, error) {
	if f.applyHook != nil {
		f.applyHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, m.OpID)
	if err, ok := f.errs[m.OpID]; ok {
		return nil, err
	}
	if ack, ok := f.acks[m.OpID]; ok {
		return ack, nil
	}
	return &remote.Ack{}, nil
}

func (f *fakeRemote) GetPresignedPutURL(ctx context.Context) (string, string, error) {
	return "", "", nil
}

func (f *fakeRemote) GetPresignedGetURL(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (f *fakeRemote) MarkUploaded(ctx context.Context, key string) error { return nil }

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

type fixture struct {
	records *records.SQLiteRepository
	oplog   *oplog.SQLiteLog
	remote  *fakeRemote
	rec     *Reconciler
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := setupDB(t)
	f := &fixture{
		records: records.NewSQLiteRepository(db),
		oplog:   oplog.NewSQLiteLog(db),
		remote:  newFakeRemote(),
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.rec = NewReconciler(log, f.oplog, f.records, f.remote, "owner-1", opts...)
	return f
}

func (f *fixture) createNote(t *testing.T, localID string) *models.Mutation {
	t.Helper()
	ctx := context.Background()
	payload, err := models.Wrap(models.Note{Title: localID})
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, f.records.Put(ctx, &models.Record{
		LocalID: localID, Type: models.EntityTypeNote, OwnerID: "owner-1",
		Payload: payload, CreatedAt: now, UpdatedAt: now,
	}))
	m := &models.Mutation{
		OpID: uuid.NewString(), Op: models.OpCreate,
		Type: models.EntityTypeNote, TargetLocalID: localID, Payload: payload,
	}
	require.NoError(t, f.oplog.Append(ctx, m))
	return m
}

func TestDrainOnce_CreateAssignsRemoteID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m := f.createNote(t, "n1")
	f.remote.acks[m.OpID] = &remote.Ack{RemoteID: "srv-1"}

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)

	rec, err := f.records.Get(ctx, models.EntityTypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.RemoteID)

	got, err := f.oplog.Get(ctx, m.Sequence)
	require.NoError(t, err)
	assert.True(t, got.Synced)

	batch, err := f.oplog.PeekBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestDrainOnce_OnePerTarget(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m1 := f.createNote(t, "n1")
	f.remote.acks[m1.OpID] = &remote.Ack{RemoteID: "srv-1"}

	upd := &models.Mutation{
		OpID: uuid.NewString(), Op: models.OpUpdate,
		Type: models.EntityTypeNote, TargetLocalID: "n1",
		Payload: []byte(`{"title":"v2"}`),
	}
	require.NoError(t, f.oplog.Append(ctx, upd))

	// First pass only dispatches the create; the update waits its turn.
	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, []string{m1.OpID}, f.remote.applied)

	// The update now goes out with the id issued for the create.
	stats, err = f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, []string{m1.OpID, upd.OpID}, f.remote.applied)
}

func TestDrainOnce_OfflineChainSyncsInOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Three changes queued against one record while unreachable: a create
	// followed by two updates.
	m1 := f.createNote(t, "n1")
	f.remote.acks[m1.OpID] = &remote.Ack{RemoteID: "srv-1"}

	var updates []*models.Mutation
	for _, title := range []string{"v2", "v3"} {
		m := &models.Mutation{
			OpID: uuid.NewString(), Op: models.OpUpdate,
			Type: models.EntityTypeNote, TargetLocalID: "n1",
			Payload: []byte(`{"title":"` + title + `"}`),
		}
		require.NoError(t, f.oplog.Append(ctx, m))
		updates = append(updates, m)
	}

	for i := 0; i < 3; i++ {
		_, err := f.rec.DrainOnce(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{m1.OpID, updates[0].OpID, updates[1].OpID}, f.remote.applied)

	rec, err := f.records.Get(ctx, models.EntityTypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.RemoteID)

	batch, err := f.oplog.PeekBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestDrainOnce_ConcurrentPassesSerialize(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m := f.createNote(t, "n1")
	f.remote.acks[m.OpID] = &remote.Ack{RemoteID: "srv-1"}

	inFlight := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.remote.applyHook = func() {
		once.Do(func() { close(inFlight) })
		<-release
	}

	errs := make(chan error, 2)
	go func() {
		_, err := f.rec.DrainOnce(ctx)
		errs <- err
	}()

	<-inFlight

	// A second pass started while the first is mid-dispatch must wait for
	// it rather than peek the same head entry and send it again.
	go func() {
		_, err := f.rec.DrainOnce(ctx)
		errs <- err
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}

	assert.Equal(t, []string{m.OpID}, f.remote.applied)

	rec, err := f.records.Get(ctx, models.EntityTypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.RemoteID)

	batch, err := f.oplog.PeekBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestDrainOnce_RetryableFailureBacksOff(t *testing.T) {
	f := setup(t, WithPolicy(Policy{Base: time.Hour, Cap: time.Hour, MaxAttempts: 5}))
	ctx := context.Background()

	m := f.createNote(t, "n1")
	f.remote.errs[m.OpID] = remote.ErrUnavailable

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Retried)

	got, err := f.oplog.Get(ctx, m.Sequence)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttemptCount)
	assert.False(t, got.Synced)
	assert.False(t, got.Terminal)
	assert.True(t, got.NotBefore.After(time.Now()))

	// Still backing off: the entry is planned out, no second call.
	stats, err = f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Dispatched)
	assert.Equal(t, 1, f.remote.callCount())
}

func TestDrainOnce_ExhaustedAttemptsGoTerminal(t *testing.T) {
	f := setup(t, WithPolicy(Policy{Base: time.Millisecond, Cap: time.Millisecond, MaxAttempts: 1}))
	ctx := context.Background()

	m := f.createNote(t, "n1")
	f.remote.errs[m.OpID] = remote.ErrUnavailable

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Terminal)

	got, err := f.oplog.Get(ctx, m.Sequence)
	require.NoError(t, err)
	assert.True(t, got.Terminal)
	assert.False(t, got.Acked)
	assert.Contains(t, got.LastError, "unavailable")
}

func TestDrainOnce_RejectionIsTerminalAndBlocksTarget(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m := f.createNote(t, "n1")
	f.remote.errs[m.OpID] = remote.ErrRejected

	upd := &models.Mutation{
		OpID: uuid.NewString(), Op: models.OpUpdate,
		Type: models.EntityTypeNote, TargetLocalID: "n1",
		Payload: []byte(`{"title":"v2"}`),
	}
	require.NoError(t, f.oplog.Append(ctx, upd))

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Terminal)

	// The unacked terminal failure blocks the update for the same note.
	stats, err = f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Dispatched)
	assert.Equal(t, 1, f.remote.callCount())

	// Acknowledging the failure unblocks the target.
	require.NoError(t, f.oplog.Ack(ctx, m.Sequence))
	f.remote.errs = map[string]error{}

	// The update still cannot apply: the create never reached the server.
	stats, err = f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Terminal)
}

func TestDrainOnce_DeleteOfUnsyncedRecordResolvesLocally(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.createNote(t, "n1")
	require.NoError(t, f.records.MarkDeleted(ctx, models.EntityTypeNote, "n1"))
	del := &models.Mutation{
		OpID: uuid.NewString(), Op: models.OpDelete,
		Type: models.EntityTypeNote, TargetLocalID: "n1", Payload: []byte(`{}`),
	}
	require.NoError(t, f.oplog.Append(ctx, del))

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ResolvedLocally)
	assert.Zero(t, f.remote.callCount())

	_, err = f.records.Get(ctx, models.EntityTypeNote, "n1")
	assert.Error(t, err)

	batch, err := f.oplog.PeekBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestDrainOnce_SyncedDeleteRemovesTombstone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m := f.createNote(t, "n1")
	f.remote.acks[m.OpID] = &remote.Ack{RemoteID: "srv-1"}
	_, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)

	require.NoError(t, f.records.MarkDeleted(ctx, models.EntityTypeNote, "n1"))
	del := &models.Mutation{
		OpID: uuid.NewString(), Op: models.OpDelete,
		Type: models.EntityTypeNote, TargetLocalID: "n1", Payload: []byte(`{}`),
	}
	require.NoError(t, f.oplog.Append(ctx, del))

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)

	_, err = f.records.Get(ctx, models.EntityTypeNote, "n1")
	assert.Error(t, err)
}

func TestDrainOnce_DuplicateAckIsSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m := f.createNote(t, "n1")
	f.remote.acks[m.OpID] = &remote.Ack{RemoteID: "srv-1", Duplicate: true}

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)

	rec, err := f.records.Get(ctx, models.EntityTypeNote, "n1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.RemoteID)
}

func TestDrainOnce_ParallelTargets(t *testing.T) {
	f := setup(t, WithWorkers(4))
	ctx := context.Background()

	for _, id := range []string{"n1", "n2", "n3"} {
		m := f.createNote(t, id)
		f.remote.acks[m.OpID] = &remote.Ack{RemoteID: "srv-" + id}
	}

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Synced)
}

func TestDrainOnce_EmptyLog(t *testing.T) {
	f := setup(t)
	stats, err := f.rec.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats)
}

func TestPlan(t *testing.T) {
	now := time.Now()
	m := func(seq int64, target string, mod func(*models.Mutation)) *models.Mutation {
		mu := &models.Mutation{Sequence: seq, Type: models.EntityTypeNote, TargetLocalID: target}
		if mod != nil {
			mod(mu)
		}
		return mu
	}

	batch := []*models.Mutation{
		m(1, "a", nil),
		m(2, "a", nil), // behind seq 1 for the same target
		m(3, "b", func(mu *models.Mutation) { mu.Terminal = true }),
		m(4, "b", nil), // blocked by seq 3
		m(5, "c", func(mu *models.Mutation) { mu.NotBefore = now.Add(time.Hour) }),
		m(6, "d", nil),
	}

	got := plan(batch, now)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Sequence)
	assert.Equal(t, int64(6), got[1].Sequence)
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.rec.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	m := f.createNote(t, "n1")
	f.remote.acks[m.OpID] = &remote.Ack{RemoteID: "srv-1"}

	require.Eventually(t, func() bool {
		got, err := f.oplog.Get(context.Background(), m.Sequence)
		return err == nil && got.Synced
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestDrainOnce_MissingTargetForUpdateIsTerminal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	upd := &models.Mutation{
		OpID: uuid.NewString(), Op: models.OpUpdate,
		Type: models.EntityTypeNote, TargetLocalID: "ghost",
		Payload: []byte(`{}`),
	}
	require.NoError(t, f.oplog.Append(ctx, upd))

	stats, err := f.rec.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Terminal)
	assert.Zero(t, f.remote.callCount())
}

func TestRetryableHelper(t *testing.T) {
	assert.True(t, remote.Retryable(remote.ErrUnavailable))
	assert.True(t, remote.Retryable(errors.New("weird")))
	assert.False(t, remote.Retryable(remote.ErrRejected))
}

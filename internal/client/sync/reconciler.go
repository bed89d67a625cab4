package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/models"
	"github.com/dkazakevich/studykeeper/internal/client/remote"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/oplog"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/records"
	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Stats summarizes one drain pass.
type Stats struct {
	Dispatched      int
	Synced          int
	Retried         int
	Terminal        int
	ResolvedLocally int
}

// Reconciler replays the mutation log against the server.
type Reconciler struct {
	log     logging.Logger
	oplog   oplog.Log
	records records.Repository
	remote  remote.Client
	ownerID string

	policy      Policy
	batchSize   int
	workers     int
	callTimeout time.Duration

	// mu serializes drain passes: the interval ticker and a manual sync
	// command may both drain the same log, and two concurrent passes would
	// peek and dispatch the same head entry.
	mu sync.Mutex

	now func() time.Time
}

// Option tweaks reconciler defaults.
type Option func(*Reconciler)

func WithPolicy(p Policy) Option {
	return func(r *Reconciler) { r.policy = p }
}

func WithBatchSize(n int) Option {
	return func(r *Reconciler) { r.batchSize = n }
}

func WithWorkers(n int) Option {
	return func(r *Reconciler) { r.workers = n }
}

func WithCallTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.callTimeout = d }
}

func NewReconciler(log logging.Logger, ol oplog.Log, rr records.Repository, rc remote.Client, ownerID string, opts ...Option) *Reconciler {
	r := &Reconciler{
		log:         log.With("component", "reconciler"),
		oplog:       ol,
		records:     rr,
		remote:      rc,
		ownerID:     ownerID,
		policy:      DefaultPolicy(),
		batchSize:   100,
		workers:     4,
		callTimeout: 10 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drains the log on the given interval until ctx is canceled. Errors
// from individual passes are logged, not returned; the next tick retries.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := r.DrainOnce(ctx)
			if err != nil {
				r.log.Error(ctx, "drain pass failed", "error", err)
				continue
			}
			if stats.Dispatched > 0 || stats.ResolvedLocally > 0 {
				r.log.Info(ctx, "drain pass finished",
					"dispatched", stats.Dispatched,
					"synced", stats.Synced,
					"retried", stats.Retried,
					"terminal", stats.Terminal,
					"resolved_locally", stats.ResolvedLocally)
			}
		case <-ctx.Done():
			return
		}
	}
}

type targetKey struct {
	t       models.EntityType
	localID string
}

// plan picks the entries eligible for dispatch from a batch: the oldest
// unresolved entry of each target, unless that target is blocked by an
// unacked terminal failure or still backing off.
func plan(batch []*models.Mutation, now time.Time) []*models.Mutation {
	seen := make(map[targetKey]bool, len(batch))
	var out []*models.Mutation
	for _, m := range batch {
		key := targetKey{m.Type, m.TargetLocalID}
		if seen[key] {
			continue
		}
		seen[key] = true
		if m.Blocking() {
			continue
		}
		if now.Before(m.NotBefore) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// DrainOnce runs a single pass: plan a batch, dispatch eligible entries
// concurrently (one per target), and record each outcome in the log. Passes
// are serialized; a call made while another pass runs waits for it.
func (r *Reconciler) DrainOnce(ctx context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats Stats

	batch, err := r.oplog.PeekBatch(ctx, r.batchSize)
	if err != nil {
		return stats, fmt.Errorf("peeking mutation log: %w", err)
	}
	if len(batch) == 0 {
		return stats, nil
	}

	eligible := plan(batch, r.now())

	results := make([]outcome, len(eligible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, m := range eligible {
		g.Go(func() error {
			results[i] = r.dispatch(gctx, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for i, m := range eligible {
		if err := r.record(ctx, m, results[i], &stats); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

type outcomeKind int

const (
	outcomeSynced outcomeKind = iota
	outcomeRetry
	outcomeTerminal
	outcomeLocal
)

type outcome struct {
	kind outcomeKind
	ack  *remote.Ack
	err  error
}

// dispatch replays one entry. It resolves the record's remote identity at
// call time, not enqueue time, so a create acknowledged since the entry was
// appended is picked up.
func (r *Reconciler) dispatch(ctx context.Context, m *models.Mutation) outcome {
	rec, err := r.records.Get(ctx, m.Type, m.TargetLocalID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Row is gone but its log entry is not. Nothing left to sync.
			if m.Op == models.OpDelete {
				return outcome{kind: outcomeLocal}
			}
			return outcome{kind: outcomeTerminal, err: fmt.Errorf("target record missing: %w", err)}
		}
		return outcome{kind: outcomeRetry, err: err}
	}

	// A delete of a record the server never issued an id for: the create was
	// superseded in the log, so there is nothing remote to remove.
	if m.Op == models.OpDelete && !rec.Synced() {
		return outcome{kind: outcomeLocal}
	}

	if m.Op != models.OpCreate && !rec.Synced() {
		// An update should never outrun its create; the log dispatches per
		// target in sequence order.
		return outcome{kind: outcomeTerminal, err: errors.New("update targets a record with no remote id")}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	var remoteID string
	if m.Op != models.OpCreate {
		remoteID = rec.RemoteID
	}

	ack, err := r.remote.Apply(callCtx, m, remoteID, r.ownerID)
	if err != nil {
		if remote.Retryable(err) {
			return outcome{kind: outcomeRetry, err: err}
		}
		return outcome{kind: outcomeTerminal, err: err}
	}

	return outcome{kind: outcomeSynced, ack: ack}
}

// record persists a dispatch outcome: the log transition plus any entity
// store follow-up (remote id assignment, tombstone removal).
func (r *Reconciler) record(ctx context.Context, m *models.Mutation, o outcome, stats *Stats) error {
	switch o.kind {
	case outcomeLocal:
		if err := r.records.Delete(ctx, m.Type, m.TargetLocalID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if err := r.oplog.MarkSynced(ctx, m.Sequence); err != nil {
			return err
		}
		stats.ResolvedLocally++
		return nil

	case outcomeSynced:
		stats.Dispatched++
		if m.Op == models.OpCreate && o.ack.RemoteID != "" {
			if err := r.records.ReassignID(ctx, m.Type, m.TargetLocalID, o.ack.RemoteID); err != nil {
				if errors.Is(err, common.ErrRemoteIDConflict) {
					r.log.Error(ctx, "remote id conflict", "sequence", m.Sequence, "op_id", m.OpID, "error", err)
					if terr := r.oplog.MarkTerminal(ctx, m.Sequence, err.Error()); terr != nil {
						return terr
					}
					stats.Terminal++
					return nil
				}
				return err
			}
		}
		if m.Op == models.OpDelete {
			if err := r.records.Delete(ctx, m.Type, m.TargetLocalID); err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}
		}
		if err := r.oplog.MarkSynced(ctx, m.Sequence); err != nil {
			return err
		}
		if o.ack.Duplicate {
			r.log.Debug(ctx, "operation already applied on server", "sequence", m.Sequence, "op_id", m.OpID)
		}
		stats.Synced++
		return nil

	case outcomeRetry:
		stats.Dispatched++
		attempts := m.AttemptCount + 1
		if r.policy.Exhausted(attempts) {
			r.log.Warn(ctx, "attempt budget exhausted", "sequence", m.Sequence, "op_id", m.OpID, "attempts", attempts, "error", o.err)
			if err := r.oplog.MarkTerminal(ctx, m.Sequence, o.err.Error()); err != nil {
				return err
			}
			stats.Terminal++
			return nil
		}
		notBefore := r.now().Add(r.policy.Delay(attempts))
		if err := r.oplog.MarkFailed(ctx, m.Sequence, notBefore, o.err.Error()); err != nil {
			return err
		}
		stats.Retried++
		return nil

	case outcomeTerminal:
		stats.Dispatched++
		r.log.Error(ctx, "mutation failed terminally", "sequence", m.Sequence, "op_id", m.OpID, "error", o.err)
		if err := r.oplog.MarkTerminal(ctx, m.Sequence, o.err.Error()); err != nil {
			return err
		}
		stats.Terminal++
		return nil
	}

	return fmt.Errorf("unknown outcome kind %d", o.kind)
}

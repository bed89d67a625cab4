package oplog

import (
	"context"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/models"
)

// Counts summarizes the log for user-visible sync status.
type Counts struct {
	// Pending counts entries still awaiting a successful round trip.
	Pending int
	// TerminalFailures counts entries that failed terminally and have not
	// been acknowledged/discarded by the caller yet.
	TerminalFailures int
}

// Log describes the mutation-log operations. Append is expected to run under
// the same single-writer discipline (and usually the same transaction) as the
// entity-store write that produced the mutation.
type Log interface {
	// Append assigns the next sequence value and persists the entry durably
	// before returning. Appending a delete marks all earlier unresolved
	// entries for the same target superseded.
	Append(ctx context.Context, m *models.Mutation) error

	// PeekBatch returns up to maxN oldest unresolved entries in sequence
	// order, never skipping gaps. Terminal-unacked entries are included so
	// the reconciler can tell which targets are blocked.
	PeekBatch(ctx context.Context, maxN int) ([]*models.Mutation, error)

	// Get returns a single entry by sequence.
	Get(ctx context.Context, sequence int64) (*models.Mutation, error)

	// MarkSynced marks an entry terminally applied.
	MarkSynced(ctx context.Context, sequence int64) error

	// MarkFailed records a retryable failure: increments attempt_count and
	// sets the backoff deadline before the next attempt.
	MarkFailed(ctx context.Context, sequence int64, notBefore time.Time, cause string) error

	// MarkTerminal demotes an entry to a terminal failure. It stays in the
	// log, blocks later entries for its target, and waits for Ack.
	MarkTerminal(ctx context.Context, sequence int64, cause string) error

	// Ack discards a terminal failure, unblocking later entries for the
	// same target.
	Ack(ctx context.Context, sequence int64) error

	// TerminalFailures lists unacked terminal entries for user surfacing.
	TerminalFailures(ctx context.Context) ([]*models.Mutation, error)

	// Counts reports pending and terminally failed entry counts without
	// touching the network.
	Counts(ctx context.Context) (Counts, error)
}

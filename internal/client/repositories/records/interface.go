package records

import (
	"context"

	"github.com/dkazakevich/studykeeper/internal/client/models"
)

// Predicate filters records during Query. A nil predicate matches everything.
type Predicate func(*models.Record) bool

// Repository describes the entity-store operations. Implementations are
// backed by the local SQLite database.
type Repository interface {
	// Put inserts a new record or replaces an existing one by local id.
	Put(ctx context.Context, r *models.Record) error

	// Get returns a record by entity type and local id, including tombstoned
	// ones. Returns common.ErrorNotFound when no row exists.
	Get(ctx context.Context, t models.EntityType, localID string) (*models.Record, error)

	// Query returns all non-tombstoned records of the given type matching the
	// predicate, in insertion order.
	Query(ctx context.Context, t models.EntityType, p Predicate) ([]*models.Record, error)

	// MarkDeleted tombstones a record so it disappears from queries while its
	// delete mutation is still pending.
	MarkDeleted(ctx context.Context, t models.EntityType, localID string) error

	// Delete physically removes a record. Called once the corresponding
	// delete mutation is confirmed applied.
	Delete(ctx context.Context, t models.EntityType, localID string) error

	// ReassignID stores the canonical remote identifier issued by the server.
	// Repeating the same mapping is a no-op; a different remote id for an
	// already-assigned record returns common.ErrRemoteIDConflict.
	ReassignID(ctx context.Context, t models.EntityType, localID, remoteID string) error
}

package records

import (
	"context"

	"github.com/dkazakevich/studykeeper/internal/server/models"
)

type Repository interface {
	// Insert stores a newly created record. The remote id must be fresh.
	Insert(ctx context.Context, r *models.Record) error

	// Update replaces the payload of an existing live record. Returns
	// common.ErrorNotFound when no live row matches.
	Update(ctx context.Context, remoteID string, payload []byte) error

	// Delete tombstones a record. Deleting an already-tombstoned record is a
	// no-op; deleting an unknown one returns common.ErrorNotFound.
	Delete(ctx context.Context, remoteID string) error

	// Get returns a record by remote id, tombstoned ones included.
	Get(ctx context.Context, remoteID string) (*models.Record, error)

	// ListByOwner returns all live records of one owner.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error)
}

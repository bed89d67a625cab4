// Package appliedops stores the idempotency ledger: which client operation
// ids have already been applied and what remote id each produced.
package appliedops

import (
	"context"

	"github.com/dkazakevich/studykeeper/internal/server/models"
)

type Repository interface {
	// Lookup returns the stored outcome for an operation id, or nil when the
	// operation has not been applied.
	Lookup(ctx context.Context, opID string) (*models.AppliedOp, error)

	// Record stores the outcome of a freshly applied operation.
	Record(ctx context.Context, op *models.AppliedOp) error
}

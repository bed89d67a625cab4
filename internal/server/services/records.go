// Package services implements the server-side application logic: applying
// client mutations idempotently and issuing presigned object-storage URLs.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/dbx"
	"github.com/dkazakevich/studykeeper/internal/server/models"
	"github.com/dkazakevich/studykeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ApplyParams is one mutation as received from a client.
type ApplyParams struct {
	OpID       string
	Operation  string
	EntityType string
	RemoteID   string
	OwnerID    string
	Payload    []byte
}

// ApplyResult acknowledges an applied mutation.
type ApplyResult struct {
	RemoteID  string
	Duplicate bool
}

// RecordService applies client mutations to the authoritative store. Each
// apply runs in one transaction together with its idempotency-ledger write,
// so a crash can not apply an operation without remembering its op id.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecordService(db *sql.DB, rm repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: rm}
}

func validateParams(p ApplyParams) error {
	if p.OpID == "" {
		return fmt.Errorf("%w: missing op_id", common.ErrorValidation)
	}
	if p.EntityType == "" {
		return fmt.Errorf("%w: missing entity_type", common.ErrorValidation)
	}
	switch p.Operation {
	case "create":
	case "update", "delete":
		if p.RemoteID == "" {
			return fmt.Errorf("%w: missing remote_id for %s", common.ErrorValidation, p.Operation)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", common.ErrorValidation, p.Operation)
	}
	return nil
}

// Apply applies one mutation, deduplicating by op id: a replayed operation
// returns the stored outcome with Duplicate set instead of applying twice.
func (s *RecordService) Apply(ctx context.Context, p ApplyParams) (*ApplyResult, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	var result *ApplyResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ops := s.repomanager.AppliedOps(tx)
		recs := s.repomanager.Records(tx)

		applied, err := ops.Lookup(ctx, p.OpID)
		if err != nil {
			return err
		}
		if applied != nil {
			result = &ApplyResult{RemoteID: applied.RemoteID, Duplicate: true}
			return nil
		}

		now := time.Now()
		remoteID := p.RemoteID

		switch p.Operation {
		case "create":
			remoteID = uuid.NewString()
			err = recs.Insert(ctx, &models.Record{
				RemoteID:   remoteID,
				EntityType: p.EntityType,
				OwnerID:    p.OwnerID,
				Payload:    p.Payload,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		case "update":
			err = recs.Update(ctx, p.RemoteID, p.Payload)
		case "delete":
			err = recs.Delete(ctx, p.RemoteID)
		}
		if err != nil {
			return err
		}

		if err := ops.Record(ctx, &models.AppliedOp{OpID: p.OpID, RemoteID: remoteID, AppliedAt: now}); err != nil {
			return err
		}

		result = &ApplyResult{RemoteID: remoteID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MarkUploaded records a confirmed attachment upload.
func (s *RecordService) MarkUploaded(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: missing storage key", common.ErrorValidation)
	}
	return s.repomanager.Uploads(s.db).MarkUploaded(ctx, key)
}

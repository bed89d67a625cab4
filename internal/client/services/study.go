// Package services implements the client use cases on top of the local
// repositories: entity CRUD feeding the mutation log, spaced-repetition
// review, sync status reporting and attachment handling.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/models"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/oplog"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/records"
	"github.com/dkazakevich/studykeeper/internal/client/scheduler"
	"github.com/dkazakevich/studykeeper/internal/client/storage"
	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/dbx"
	"github.com/google/uuid"
)

// StudyService is the write and read path of the on-device store. Every
// mutating call commits the entity-store change and its log entry in a single
// transaction, so the log never diverges from the store.
type StudyService interface {
	Create(ctx context.Context, t models.EntityType, payload json.RawMessage) (*models.Record, error)
	Update(ctx context.Context, t models.EntityType, localID string, payload json.RawMessage) (*models.Record, error)
	Delete(ctx context.Context, t models.EntityType, localID string) error
	Get(ctx context.Context, t models.EntityType, localID string) (*models.Record, error)
	List(ctx context.Context, t models.EntityType) ([]*models.Record, error)

	DueCards(ctx context.Context, deckID string, now time.Time) ([]scheduler.Card, error)
	SubmitReview(ctx context.Context, localID string, q scheduler.Quality, now time.Time) (*models.Flashcard, error)

	SyncStatus(ctx context.Context) (oplog.Counts, error)
	TerminalFailures(ctx context.Context) ([]*models.Mutation, error)
	AckFailure(ctx context.Context, sequence int64) error
}

type studyService struct {
	db      *sql.DB
	records records.Repository
	oplog   oplog.Log
	ownerID string
	now     func() time.Time
}

func NewStudyService(repos *storage.Repositories, ownerID string) StudyService {
	return &studyService{
		db:      repos.DB,
		records: repos.Records,
		oplog:   repos.Oplog,
		ownerID: ownerID,
		now:     time.Now,
	}
}

func validate(t models.EntityType, payload json.RawMessage) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", models.ErrUnknownEntityType, t)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("%w: payload is not valid JSON", common.ErrorValidation)
	}
	return nil
}

func (s *studyService) Create(ctx context.Context, t models.EntityType, payload json.RawMessage) (*models.Record, error) {
	if err := validate(t, payload); err != nil {
		return nil, err
	}

	now := s.now()
	r := &models.Record{
		LocalID:   uuid.NewString(),
		Type:      t,
		OwnerID:   s.ownerID,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m := &models.Mutation{
		OpID:          uuid.NewString(),
		Op:            models.OpCreate,
		Type:          t,
		TargetLocalID: r.LocalID,
		Payload:       payload,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := records.NewSQLiteRepository(tx).Put(ctx, r); err != nil {
			return err
		}
		return oplog.NewSQLiteLog(tx).Append(ctx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", t, err)
	}

	return r, nil
}

func (s *studyService) Update(ctx context.Context, t models.EntityType, localID string, payload json.RawMessage) (*models.Record, error) {
	if err := validate(t, payload); err != nil {
		return nil, err
	}

	r, err := s.Get(ctx, t, localID)
	if err != nil {
		return nil, err
	}

	r.Payload = payload
	r.UpdatedAt = s.now()
	m := &models.Mutation{
		OpID:          uuid.NewString(),
		Op:            models.OpUpdate,
		Type:          t,
		TargetLocalID: localID,
		Payload:       payload,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := records.NewSQLiteRepository(tx).Put(ctx, r); err != nil {
			return err
		}
		return oplog.NewSQLiteLog(tx).Append(ctx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", t, localID, err)
	}

	return r, nil
}

// Delete tombstones the record and queues a delete mutation. Appending the
// delete supersedes any still-unresolved earlier entries for the record, so
// a never-synced create+delete pair costs no network round trip. Deleting an
// already-tombstoned record is a no-op.
func (s *studyService) Delete(ctx context.Context, t models.EntityType, localID string) error {
	r, err := s.records.Get(ctx, t, localID)
	if err != nil {
		return err
	}
	if r.Deleted {
		return nil
	}

	m := &models.Mutation{
		OpID:          uuid.NewString(),
		Op:            models.OpDelete,
		Type:          t,
		TargetLocalID: localID,
		Payload:       json.RawMessage(`{}`),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := records.NewSQLiteRepository(tx).MarkDeleted(ctx, t, localID); err != nil {
			return err
		}
		return oplog.NewSQLiteLog(tx).Append(ctx, m)
	})
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", t, localID, err)
	}

	return nil
}

// Get returns a record by local id. Tombstoned records read as not found.
func (s *studyService) Get(ctx context.Context, t models.EntityType, localID string) (*models.Record, error) {
	r, err := s.records.Get(ctx, t, localID)
	if err != nil {
		return nil, err
	}
	if r.Deleted {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (s *studyService) List(ctx context.Context, t models.EntityType) ([]*models.Record, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownEntityType, t)
	}
	return s.records.Query(ctx, t, nil)
}

// DueCards returns the cards due at now, across all decks when deckID is
// empty.
func (s *studyService) DueCards(ctx context.Context, deckID string, now time.Time) ([]scheduler.Card, error) {
	rows, err := s.records.Query(ctx, models.EntityTypeFlashcard, nil)
	if err != nil {
		return nil, err
	}

	cards := make([]scheduler.Card, 0, len(rows))
	for _, r := range rows {
		var fc models.Flashcard
		if err := r.Decode(&fc); err != nil {
			return nil, fmt.Errorf("decoding flashcard %s: %w", r.LocalID, err)
		}
		if deckID != "" && fc.DeckID != deckID {
			continue
		}
		cards = append(cards, scheduler.Card{LocalID: r.LocalID, Flashcard: fc})
	}

	return scheduler.Due(cards, now), nil
}

// SubmitReview grades one flashcard recall and persists the advanced memory
// state as a regular update, so the review syncs like any other change.
func (s *studyService) SubmitReview(ctx context.Context, localID string, q scheduler.Quality, now time.Time) (*models.Flashcard, error) {
	r, err := s.Get(ctx, models.EntityTypeFlashcard, localID)
	if err != nil {
		return nil, err
	}

	var fc models.Flashcard
	if err := r.Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding flashcard %s: %w", localID, err)
	}

	next, err := scheduler.Review(fc.Memory, q, now)
	if err != nil {
		return nil, err
	}
	fc.Memory = next

	payload, err := models.Wrap(fc)
	if err != nil {
		return nil, err
	}
	if _, err := s.Update(ctx, models.EntityTypeFlashcard, localID, payload); err != nil {
		return nil, err
	}

	return &fc, nil
}

func (s *studyService) SyncStatus(ctx context.Context) (oplog.Counts, error) {
	return s.oplog.Counts(ctx)
}

func (s *studyService) TerminalFailures(ctx context.Context) ([]*models.Mutation, error) {
	return s.oplog.TerminalFailures(ctx)
}

// AckFailure discards one terminal failure, unblocking later queued changes
// for the same record.
func (s *studyService) AckFailure(ctx context.Context, sequence int64) error {
	return s.oplog.Ack(ctx, sequence)
}

package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectExec(`INSERT INTO records`).
		WithArgs("r1", "note", "u1", []byte(`{}`), now, now, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &models.Record{
		RemoteID:   "r1",
		EntityType: "note",
		OwnerID:    "u1",
		Payload:    []byte(`{}`),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE records SET payload=\$1, updated_at=now\(\)`).
		WithArgs([]byte(`{"v":2}`), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "r1", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_MissingRowsAffected0(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE records SET payload=\$1, updated_at=now\(\)`).
		WithArgs([]byte(`{}`), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "missing", []byte(`{}`))
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE records SET deleted=true`).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_AlreadyTombstonedIsNoop(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE records SET deleted=true`).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT deleted FROM records`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"deleted"}).AddRow(true))

	if err := repo.Delete(context.Background(), "r1"); err != nil {
		t.Fatalf("repeated delete must be a no-op, got %v", err)
	}
}

func TestDelete_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE records SET deleted=true`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT deleted FROM records`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGet_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"remote_id", "entity_type", "owner_id", "payload", "created_at", "updated_at", "deleted"}).
		AddRow("r1", "note", "u1", []byte(`{"title":"t"}`), now, now, false)

	mock.ExpectQuery(`SELECT remote_id, entity_type, owner_id, payload, created_at, updated_at, deleted`).
		WithArgs("r1").
		WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RemoteID != "r1" || rec.EntityType != "note" || rec.Deleted {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestGet_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT remote_id, entity_type, owner_id, payload, created_at, updated_at, deleted`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"remote_id", "entity_type", "owner_id", "payload", "created_at", "updated_at", "deleted"}).
		AddRow("r1", "note", "u1", []byte(`{}`), now, now, false).
		AddRow("r2", "deck", "u1", []byte(`{}`), now, now, false)

	mock.ExpectQuery(`SELECT remote_id, entity_type, owner_id, payload, created_at, updated_at, deleted`).
		WithArgs("u1").
		WillReturnRows(rows)

	result, err := repo.ListByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 || result[0].RemoteID != "r1" || result[1].RemoteID != "r2" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

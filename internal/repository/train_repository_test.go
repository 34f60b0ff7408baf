package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUpsertTxReportsInsertVersusUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// MySQL reports 1 affected row for a fresh insert and 2 when the
	// ON DUPLICATE KEY branch updated an existing row.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trains").
		WithArgs("12951", "Rajdhani Express", 500).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO trains").
		WithArgs("12951", "Rajdhani Express", 550).
		WillReturnResult(sqlmock.NewResult(7, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	repo := NewTrainRepo(db)

	id, created, err := repo.UpsertTx(context.Background(), tx, "12951", "Rajdhani Express", 500)
	if err != nil {
		t.Fatalf("insert path: %v", err)
	}
	if id != 7 || !created {
		t.Fatalf("insert path: got id=%d created=%v, want id=7 created=true", id, created)
	}

	id, created, err = repo.UpsertTx(context.Background(), tx, "12951", "Rajdhani Express", 550)
	if err != nil {
		t.Fatalf("update path: %v", err)
	}
	if id != 7 || created {
		t.Fatalf("update path: got id=%d created=%v, want id=7 created=false", id, created)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByNumberNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, train_number, train_name").
		WithArgs("99999").
		WillReturnRows(sqlmock.NewRows([]string{"id", "train_number", "train_name", "total_seats", "is_active", "created_at"}))

	repo := NewTrainRepo(db)
	_, err = repo.GetByNumber(context.Background(), "99999")
	if !errors.Is(err, ErrTrainNotFound) {
		t.Fatalf("expected ErrTrainNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

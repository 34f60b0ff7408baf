package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTryCommitTxMatchingVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_ledger SET booked_seats").
		WithArgs(6, 4, 42, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	repo := NewLedgerRepo(db)
	ok, err := repo.TryCommitTx(context.Background(), tx, 42, 3, 6)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("commit should succeed when the version matches")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTryCommitTxStaleVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// A concurrent writer already bumped the version; the conditional
	// update matches zero rows and must report failure without error.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_ledger SET booked_seats").
		WithArgs(6, 4, 42, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	repo := NewLedgerRepo(db)
	ok, err := repo.TryCommitTx(context.Background(), tx, 42, 3, 6)
	if err != nil {
		t.Fatalf("a lost CAS is not an error, got %v", err)
	}
	if ok {
		t.Fatalf("commit must fail when the version is stale")
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetForUpdateTxMissingLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT booked_seats, version FROM seat_ledger").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats", "version"}))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	repo := NewLedgerRepo(db)
	_, _, err = repo.GetForUpdateTx(context.Background(), tx, 99)
	if !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureSchemaRunsAllStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	for _, table := range []string{
		"users", "refresh_tokens", "trains", "train_schedules",
		"seat_ledger", "bookings", "passengers",
	} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Passengers exist only as rows of a booking; deleting the booking must
// take them along.
func TestEnsureSchemaCascadesPassengerDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec(`passengers[\s\S]*REFERENCES bookings\(id\) ON DELETE CASCADE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for i := 0; i < 6; i++ {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetByPNRForUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// A PNR owned by another user matches no rows; the caller cannot
	// distinguish it from a nonexistent one.
	mock.ExpectQuery("FROM bookings b").
		WithArgs("AB12CD34EF", 99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewBookingRepo(db)
	_, err = repo.GetByPNRForUser(context.Background(), "ab12cd34ef", 99)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByUserAttachesPassengers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	bookedAt := time.Date(2030, 5, 20, 10, 0, 0, 0, time.UTC)
	detailCols := []string{
		"id", "pnr", "status", "num_passengers", "total_fare_paise",
		"booked_at", "confirmed_at",
		"train_number", "train_name", "source", "destination",
		"departure_time", "arrival_time", "travel_date",
	}
	mock.ExpectQuery("FROM bookings b").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(detailCols).
			AddRow(21, "AB12CD34EF", "CONFIRMED", 2, 300000,
				bookedAt, bookedAt,
				"12951", "Rajdhani Express", "Delhi", "Mumbai",
				"08:00:00", "16:30:00", "2030-06-01").
			AddRow(22, "ZZ99YY88XX", "CONFIRMED", 1, 150000,
				bookedAt, nil,
				"12951", "Rajdhani Express", "Delhi", "Mumbai",
				"08:00:00", "16:30:00", "2030-06-02"))
	mock.ExpectQuery("FROM passengers").
		WithArgs(21, 22).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "name", "age", "gender", "seat_number"}).
			AddRow(21, "Asha Verma", 34, "F", 4).
			AddRow(21, "Ravi Verma", 36, "M", 5).
			AddRow(22, "Solo Rider", 28, "O", 1))

	repo := NewBookingRepo(db)
	details, err := repo.ListByUser(context.Background(), 99)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("got %d bookings, want 2", len(details))
	}
	if len(details[0].Passengers) != 2 || len(details[1].Passengers) != 1 {
		t.Fatalf("passenger grouping wrong: %d and %d", len(details[0].Passengers), len(details[1].Passengers))
	}
	if details[0].Passengers[1].SeatNumber != 5 {
		t.Fatalf("seat ordering wrong: %+v", details[0].Passengers)
	}
	if details[1].ConfirmedAt != nil {
		t.Fatalf("nil confirmed_at should stay nil, got %v", *details[1].ConfirmedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/railway-reservation/internal/model"
	"github.com/iliyamo/railway-reservation/internal/repository"
	"github.com/iliyamo/railway-reservation/internal/service"
)

func newCoordinator(t *testing.T) (*service.BookingCoordinator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	co := service.NewBookingCoordinator(
		db,
		repository.NewScheduleRepo(db),
		repository.NewLedgerRepo(db),
		repository.NewBookingRepo(db),
	)
	return co, mock
}

func twoPassengers() []service.PassengerInput {
	return []service.PassengerInput{
		{Name: "Asha Verma", Age: 34, Gender: "F"},
		{Name: "Ravi Verma", Age: 36, Gender: "M"},
	}
}

// expectActiveRun queues the schedule+train read the coordinator does
// before opening a transaction.
func expectActiveRun(mock sqlmock.Sqlmock, scheduleID uint64, capacity uint32) {
	mock.ExpectQuery("FROM train_schedules s").
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "train_id", "train_number", "train_name", "total_seats",
			"base_fare_paise", "runs_on", "departure_time", "arrival_time",
			"source", "destination",
		}).AddRow(scheduleID, 1, "12951", "Rajdhani Express", capacity,
			150000, "2030-06-01", "08:00:00", "16:30:00", "Delhi", "Mumbai"))
}

func expectLedgerRead(mock sqlmock.Sqlmock, scheduleID uint64, capacity, booked uint32, version uint64) {
	mock.ExpectQuery("FROM seat_ledger l").
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"schedule_id", "total_seats", "booked_seats", "version", "updated_at",
		}).AddRow(scheduleID, capacity, booked, version, time.Now().UTC()))
}

func TestCreateBookingConfirmsAndAssignsContiguousSeats(t *testing.T) {
	co, mock := newCoordinator(t)

	expectActiveRun(mock, 10, 50)
	expectLedgerRead(mock, 10, 50, 3, 7)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats", "version"}).AddRow(3, 7))
	mock.ExpectQuery("SELECT 1 FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO passengers").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE seat_ledger SET booked_seats").
		WithArgs(5, 8, 10, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := co.CreateBooking(context.Background(), 99, service.CreateBookingRequest{
		ScheduleID: 10,
		Passengers: twoPassengers(),
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Len(t, res.PNR, 10)
	assert.Equal(t, model.BookingConfirmed, res.Status)
	assert.Equal(t, uint64(300000), res.TotalFarePaise)
	require.Len(t, res.Passengers, 2)
	assert.Equal(t, uint32(4), res.Passengers[0].SeatNumber)
	assert.Equal(t, uint32(5), res.Passengers[1].SeatNumber)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInsufficientSeatsBeforeTransaction(t *testing.T) {
	co, mock := newCoordinator(t)

	// Shallow check sees one free seat for a two-passenger request; no
	// transaction is ever opened.
	expectActiveRun(mock, 10, 10)
	expectLedgerRead(mock, 10, 10, 9, 4)

	_, err := co.CreateBooking(context.Background(), 99, service.CreateBookingRequest{
		ScheduleID: 10,
		Passengers: twoPassengers(),
	})
	var rej *service.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, service.ReasonInsufficientSeats, rej.Reason)
	require.NotNil(t, rej.AvailableSeats)
	assert.Equal(t, uint32(1), *rej.AvailableSeats)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInsufficientSeatsUnderLock(t *testing.T) {
	co, mock := newCoordinator(t)

	// The shallow read looks fine, but by the time the row lock is held
	// another booking has taken the seats.  Everything rolls back.
	expectActiveRun(mock, 10, 10)
	expectLedgerRead(mock, 10, 10, 3, 4)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats", "version"}).AddRow(9, 6))
	mock.ExpectRollback()

	_, err := co.CreateBooking(context.Background(), 99, service.CreateBookingRequest{
		ScheduleID: 10,
		Passengers: twoPassengers(),
	})
	var rej *service.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, service.ReasonInsufficientSeats, rej.Reason)
	require.NotNil(t, rej.AvailableSeats)
	assert.Equal(t, uint32(1), *rej.AvailableSeats)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRollsBackOnLostVersionRace(t *testing.T) {
	co, mock := newCoordinator(t)

	expectActiveRun(mock, 10, 50)
	expectLedgerRead(mock, 10, 50, 3, 7)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats", "version"}).AddRow(3, 7))
	mock.ExpectQuery("SELECT 1 FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO passengers").
		WillReturnResult(sqlmock.NewResult(0, 2))
	// The conditional write loses: zero rows matched the version.
	mock.ExpectExec("UPDATE seat_ledger SET booked_seats").
		WithArgs(5, 8, 10, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := co.CreateBooking(context.Background(), 99, service.CreateBookingRequest{
		ScheduleID: 10,
		Passengers: twoPassengers(),
	})
	var rej *service.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, service.ReasonConcurrentModification, rej.Reason)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRedrawsPNRAfterCollision(t *testing.T) {
	co, mock := newCoordinator(t)

	expectActiveRun(mock, 10, 50)
	expectLedgerRead(mock, 10, 50, 3, 7)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats", "version"}).AddRow(3, 7))
	// First draw collides with an existing booking, the second is free.
	mock.ExpectQuery("SELECT 1 FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO passengers").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE seat_ledger SET booked_seats").
		WithArgs(5, 8, 10, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := co.CreateBooking(context.Background(), 99, service.CreateBookingRequest{
		ScheduleID: 10,
		Passengers: twoPassengers(),
	})
	require.NoError(t, err)
	assert.Len(t, res.PNR, 10)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingAbortsWhenPNRDrawsExhausted(t *testing.T) {
	co, mock := newCoordinator(t)

	expectActiveRun(mock, 10, 50)
	expectLedgerRead(mock, 10, 50, 3, 7)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats", "version"}).AddRow(3, 7))
	// Every draw collides; after the fifth the coordinator gives up and
	// the transaction rolls back with nothing inserted.
	for i := 0; i < 5; i++ {
		mock.ExpectQuery("SELECT 1 FROM bookings").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	}
	mock.ExpectRollback()

	_, err := co.CreateBooking(context.Background(), 99, service.CreateBookingRequest{
		ScheduleID: 10,
		Passengers: twoPassengers(),
	})
	require.Error(t, err)
	// A generator failure is a storage error, not a caller-facing
	// rejection: there is nothing the client can correct.
	var rej *service.Rejection
	assert.False(t, errors.As(err, &rej), "pnr exhaustion must not surface as a rejection")
	assert.Contains(t, err.Error(), "pnr")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingValidationRejections(t *testing.T) {
	cases := []struct {
		name string
		req  service.CreateBookingRequest
	}{
		{"no passengers", service.CreateBookingRequest{ScheduleID: 10}},
		{"too many passengers", service.CreateBookingRequest{
			ScheduleID: 10,
			Passengers: make([]service.PassengerInput, 7),
		}},
		{"bad gender", service.CreateBookingRequest{
			ScheduleID: 10,
			Passengers: []service.PassengerInput{{Name: "X", Age: 30, Gender: "Q"}},
		}},
		{"zero age", service.CreateBookingRequest{
			ScheduleID: 10,
			Passengers: []service.PassengerInput{{Name: "X", Age: 0, Gender: "M"}},
		}},
		{"missing schedule id", service.CreateBookingRequest{
			Passengers: twoPassengers(),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// No SQL expectations: validation fails before any query.
			co, mock := newCoordinator(t)
			_, err := co.CreateBooking(context.Background(), 99, tc.req)
			var rej *service.Rejection
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, service.ReasonValidation, rej.Reason)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateBookingRejectsPastTravelDate(t *testing.T) {
	co, mock := newCoordinator(t)

	mock.ExpectQuery("FROM train_schedules s").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "train_id", "train_number", "train_name", "total_seats",
			"base_fare_paise", "runs_on", "departure_time", "arrival_time",
			"source", "destination",
		}).AddRow(10, 1, "12951", "Rajdhani Express", 50,
			150000, "2020-01-01", "08:00:00", "16:30:00", "Delhi", "Mumbai"))

	_, err := co.CreateBooking(context.Background(), 99, service.CreateBookingRequest{
		ScheduleID: 10,
		Passengers: twoPassengers(),
	})
	var rej *service.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, service.ReasonValidation, rej.Reason)

	require.NoError(t, mock.ExpectationsWereMet())
}

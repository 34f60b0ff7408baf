// Package service contains the booking transaction coordinator: the
// only code path that creates bookings and mutates seat ledgers.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/railway-reservation/internal/model"
	"github.com/iliyamo/railway-reservation/internal/repository"
	"github.com/iliyamo/railway-reservation/internal/utils"
)

// Rejection reasons surfaced to the booking endpoint.
const (
	ReasonValidation             = "VALIDATION_ERROR"
	ReasonInsufficientSeats      = "INSUFFICIENT_SEATS"
	ReasonConcurrentModification = "CONCURRENT_MODIFICATION"
)

// maxPNRAttempts caps the reservation-code collision retry loop.
// Exhausting it means the random source is broken or the keyspace is
// effectively full; either way the request fails as a storage error.
const maxPNRAttempts = 5

// Rejection is a caller-facing booking refusal.  It is an error so the
// coordinator can return it through the normal error path, but handlers
// should branch on it with errors.As and map it to HTTP 400.
// AvailableSeats is only meaningful for INSUFFICIENT_SEATS; for
// CONCURRENT_MODIFICATION the true availability is unknown to the
// caller and a fresh read is required before retrying.
type Rejection struct {
	Reason         string  `json:"reason"`
	Message        string  `json:"message"`
	AvailableSeats *uint32 `json:"available_seats,omitempty"`
}

func (r *Rejection) Error() string { return r.Reason + ": " + r.Message }

func reject(reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

func rejectInsufficient(available uint32) *Rejection {
	return &Rejection{
		Reason:         ReasonInsufficientSeats,
		Message:        fmt.Sprintf("only %d seats available", available),
		AvailableSeats: &available,
	}
}

// PassengerInput is one passenger in a booking request.
type PassengerInput struct {
	Name   string `json:"name" validate:"required,max=255"`
	Age    uint8  `json:"age" validate:"min=1,max=120"`
	Gender string `json:"gender" validate:"oneof=M F O"`
}

// CreateBookingRequest is the input of CreateBooking.  At most six
// passengers may travel on one PNR.
type CreateBookingRequest struct {
	ScheduleID uint64           `json:"schedule_id" validate:"required"`
	Passengers []PassengerInput `json:"passengers" validate:"required,min=1,max=6,dive"`
}

// BookingResult is the outcome of a successful booking.
type BookingResult struct {
	BookingID      uint64
	PNR            string
	Status         string
	TotalFarePaise uint64
	ConfirmedAt    time.Time
	Run            repository.ActiveRun
	Passengers     []repository.PassengerRecord
}

var validate = validator.New()

// BookingCoordinator orchestrates the booking transaction: cheap
// validation, a pessimistic re-check of the seat ledger under a row
// lock, seat-number assignment, and an atomic commit of the booking,
// its passengers and the ledger update.  It is safe for concurrent use;
// all writers on the same schedule serialize on the ledger row lock.
type BookingCoordinator struct {
	DB        *sql.DB
	Schedules *repository.ScheduleRepo
	Ledger    *repository.LedgerRepo
	Bookings  *repository.BookingRepo
}

// NewBookingCoordinator constructs a coordinator.  All dependencies
// must be non-nil.
func NewBookingCoordinator(db *sql.DB, schedules *repository.ScheduleRepo, ledger *repository.LedgerRepo, bookings *repository.BookingRepo) *BookingCoordinator {
	if db == nil || schedules == nil || ledger == nil || bookings == nil {
		panic("nil dependency passed to NewBookingCoordinator")
	}
	return &BookingCoordinator{DB: db, Schedules: schedules, Ledger: ledger, Bookings: bookings}
}

// CreateBooking books seats for the given user on a schedule.  On
// refusal it returns a *Rejection; any other error is a storage
// failure.  The invariant preserved here, under any interleaving of
// concurrent callers, is that the sum of passengers across CONFIRMED
// bookings of a schedule never exceeds the train's capacity.
//
// The row lock taken in the transaction is the primary correctness
// mechanism; the version compare-and-swap at commit time is a second,
// independent proof that the invariant held, so that a misconfigured
// isolation level turns into an explicit retryable rejection instead of
// a silent oversell.
func (co *BookingCoordinator) CreateBooking(ctx context.Context, userID uint64, req CreateBookingRequest) (*BookingResult, error) {
	// Cheap, optimistic validation before any transaction is opened.
	// Nothing here is authoritative: the ledger may change under us
	// until the locked re-read below.
	if err := validate.Struct(req); err != nil {
		return nil, reject(ReasonValidation, validationMessage(err))
	}
	run, err := co.Schedules.GetActiveRun(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, reject(ReasonValidation, "invalid or inactive schedule")
		}
		return nil, err
	}
	travelDate, err := time.Parse("2006-01-02", run.RunsOn)
	if err != nil {
		return nil, fmt.Errorf("parse travel date: %w", err)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if travelDate.Before(today) {
		return nil, reject(ReasonValidation, "cannot book for past dates")
	}
	count := uint32(len(req.Passengers))
	led, err := co.Ledger.Get(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if led.Available() < count {
		return nil, rejectInsufficient(led.Available())
	}

	tx, err := co.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Authoritative re-read under an exclusive row lock.  Every other
	// booking transaction on this schedule blocks here until we commit
	// or roll back.
	booked, version, err := co.Ledger.GetForUpdateTx(ctx, tx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if run.Capacity < booked+count {
		available := uint32(0)
		if run.Capacity > booked {
			available = run.Capacity - booked
		}
		return nil, rejectInsufficient(available)
	}

	pnr, err := co.generatePNRTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &repository.BookingRecord{
		PNR:            pnr,
		UserID:         userID,
		ScheduleID:     req.ScheduleID,
		NumPassengers:  count,
		TotalFarePaise: run.BaseFarePaise * uint64(count),
		Status:         model.BookingConfirmed,
		ConfirmedAt:    &now,
	}
	if err := co.Bookings.CreateTx(ctx, tx, rec); err != nil {
		return nil, err
	}

	// Seats are a contiguous block right after the current booked
	// count, assigned in request order.
	passengers := make([]repository.PassengerRecord, 0, count)
	for i, p := range req.Passengers {
		passengers = append(passengers, repository.PassengerRecord{
			BookingID:  rec.ID,
			Name:       p.Name,
			Age:        p.Age,
			Gender:     p.Gender,
			SeatNumber: booked + uint32(i) + 1,
		})
	}
	if err := co.Bookings.CreatePassengersBulkTx(ctx, tx, passengers); err != nil {
		return nil, err
	}

	// The ledger update is never a blind increment: it is a
	// compare-and-swap on the version read under the lock above.  A
	// losing write means a writer bypassed the lock; roll everything
	// back and let the caller retry against fresh state.
	ok, err := co.Ledger.TryCommitTx(ctx, tx, req.ScheduleID, version, booked+count)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reject(ReasonConcurrentModification, "booking failed due to a concurrent booking, please retry")
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &BookingResult{
		BookingID:      rec.ID,
		PNR:            pnr,
		Status:         rec.Status,
		TotalFarePaise: rec.TotalFarePaise,
		ConfirmedAt:    now,
		Run:            run,
		Passengers:     passengers,
	}, nil
}

// generatePNRTx draws reservation codes until one does not collide with
// an existing booking, up to maxPNRAttempts.
func (co *BookingCoordinator) generatePNRTx(ctx context.Context, tx *sql.Tx) (string, error) {
	for attempt := 0; attempt < maxPNRAttempts; attempt++ {
		pnr, err := utils.NewPNR()
		if err != nil {
			return "", err
		}
		exists, err := co.Bookings.PNRExistsTx(ctx, tx, pnr)
		if err != nil {
			return "", err
		}
		if !exists {
			return pnr, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique pnr after %d attempts", maxPNRAttempts)
}

// validationMessage flattens a validator error into one human-readable
// line for the API response.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid booking request"
	}
	fe := verrs[0]
	switch fe.Namespace() {
	case "CreateBookingRequest.ScheduleID":
		return "schedule_id is required"
	case "CreateBookingRequest.Passengers":
		return "between 1 and 6 passengers are required"
	}
	switch fe.Field() {
	case "Name":
		return "passenger name is required"
	case "Age":
		return "passenger age must be between 1 and 120"
	case "Gender":
		return "passenger gender must be one of M, F, O"
	}
	return "invalid booking request"
}

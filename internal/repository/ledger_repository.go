package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/railway-reservation/internal/model"
)

// LedgerRepo manages the per-schedule seat_ledger rows.  The ledger is
// the single shared mutable resource of the booking path: it is only
// ever written through TryCommitTx, a compare-and-swap keyed on the
// version column, and only inside a transaction that read the row under
// an exclusive lock first.  A blind `booked_seats = booked_seats + N`
// update never appears anywhere in this package.
type LedgerRepo struct{ DB *sql.DB }

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{DB: db} }

// Get returns the ledger for a schedule together with the train's
// capacity.  It is a plain read: side-effect free, safe to call any
// number of times, and takes no locks.
func (r *LedgerRepo) Get(ctx context.Context, scheduleID uint64) (model.SeatLedger, error) {
	const q = `SELECT l.schedule_id, t.total_seats, l.booked_seats, l.version, l.updated_at
	           FROM seat_ledger l
	           JOIN train_schedules s ON s.id = l.schedule_id
	           JOIN trains t ON t.id = s.train_id
	           WHERE l.schedule_id = ?`
	var led model.SeatLedger
	err := r.DB.QueryRowContext(ctx, q, scheduleID).Scan(
		&led.ScheduleID, &led.Capacity, &led.BookedSeats, &led.Version, &led.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SeatLedger{}, ErrLedgerNotFound
	}
	return led, err
}

// GetForUpdateTx re-reads the ledger row inside the given transaction
// holding an exclusive row lock (SELECT ... FOR UPDATE).  Concurrent
// booking transactions on the same schedule block here until the lock
// holder commits or rolls back; readers of other schedules are not
// affected.  Only the ledger row itself is locked, so capacity must
// come from a prior schedule read.
func (r *LedgerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) (booked uint32, version uint64, err error) {
	const q = `SELECT booked_seats, version FROM seat_ledger WHERE schedule_id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, scheduleID).Scan(&booked, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrLedgerNotFound
	}
	return booked, version, err
}

// TryCommitTx applies the booked count as a single conditional write:
// the update only matches while the stored version still equals
// expectedVersion, and bumps the version by one when it does.  It
// returns false, with no row mutated, when another writer has committed
// in between.  This is the optimistic guard behind the row lock: even
// under a weaker isolation level a losing writer fails loudly instead
// of corrupting the count.
func (r *LedgerRepo) TryCommitTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, expectedVersion uint64, newBooked uint32) (bool, error) {
	const q = `UPDATE seat_ledger SET booked_seats = ?, version = ? WHERE schedule_id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, newBooked, expectedVersion+1, scheduleID, expectedVersion)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

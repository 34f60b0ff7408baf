// Package repository defines sentinel error values shared across the
// repositories.  Handlers and services use these to distinguish failure
// scenarios without inspecting driver errors: a missing schedule maps
// to HTTP 404, a stale ledger version to a retryable conflict, and so
// on.  Driver-level errors are passed through untouched.
package repository

import "errors"

// ErrTrainNotFound is returned when no train matches the given number
// or identifier.
var ErrTrainNotFound = errors.New("train not found")

// ErrScheduleNotFound is returned when a schedule does not exist, is
// inactive, or belongs to an inactive train.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrLedgerNotFound is returned when a schedule has no seat ledger row.
// Ledgers are created together with their schedule, so this indicates
// a corrupt or half-migrated database rather than a user error.
var ErrLedgerNotFound = errors.New("seat ledger not found")

// ErrBookingNotFound is returned when a PNR does not exist or belongs
// to a different user.  Lookups never reveal other users' bookings, so
// both cases surface identically.
var ErrBookingNotFound = errors.New("booking not found")

package model

import "time"

// Booking statuses.  A booking is created directly in CONFIRMED state
// by the coordinator; PENDING and CANCELLED exist for administrative
// transitions.  Cancelling does not return seats to the ledger.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Passenger gender categories.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Booking records a confirmed group of seats on one schedule, owned by
// one user.  Maps to the `bookings` table.  Rows are immutable after
// creation except for status transitions; they are only ever created
// inside the booking coordinator's transaction, together with their
// passengers and the ledger update.
//
// Fields:
//  ID             – primary key identifier.
//  PNR            – public 10-character alphanumeric reservation code,
//                   globally unique.
//  UserID         – user who made the booking.
//  ScheduleID     – schedule being booked.
//  NumPassengers  – number of passengers (1–6).
//  TotalFarePaise – base fare × NumPassengers, in paise.
//  Status         – PENDING, CONFIRMED or CANCELLED.
//  BookedAt       – creation timestamp.
//  ConfirmedAt    – when the booking was confirmed (nullable).
//  CancelledAt    – when the booking was cancelled (nullable).
type Booking struct {
	ID             uint64     // bookings.id
	PNR            string     // bookings.pnr
	UserID         uint64     // bookings.user_id
	ScheduleID     uint64     // bookings.schedule_id
	NumPassengers  uint32     // bookings.num_passengers
	TotalFarePaise uint64     // bookings.total_fare_paise
	Status         string     // bookings.status
	BookedAt       time.Time  // bookings.booked_at
	ConfirmedAt    *time.Time // bookings.confirmed_at (nullable)
	CancelledAt    *time.Time // bookings.cancelled_at (nullable)
}

// Passenger belongs to exactly one booking and is cascade-deleted with
// it.  Seat numbers are assigned by the coordinator as a contiguous
// block starting right after the ledger's booked count at commit time,
// so they are unique within a schedule.
//
// Fields:
//  ID         – primary key identifier.
//  BookingID  – owning booking.
//  Name       – passenger name.
//  Age        – 1–120.
//  Gender     – one of M, F, O.
//  SeatNumber – 1-based seat number, unique per schedule.
type Passenger struct {
	ID         uint64 // passengers.id
	BookingID  uint64 // passengers.booking_id
	Name       string // passengers.name
	Age        uint8  // passengers.age
	Gender     string // passengers.gender
	SeatNumber uint32 // passengers.seat_number
}

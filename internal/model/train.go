package model

import "time"

// Train holds the immutable metadata of a physical train as stored in
// the `trains` table.  Capacity (total seats) is fixed when the train
// is registered and shared by every schedule the train runs on.
//
// Fields:
//  ID         – primary key identifier.
//  Number     – unique alphanumeric train number (e.g. 12951).
//  Name       – display name of the train.
//  TotalSeats – seat capacity, fixed at creation.
//  IsActive   – whether the train is bookable.
//  CreatedAt  – creation timestamp.
type Train struct {
	ID         uint64    // trains.id
	Number     string    // trains.train_number
	Name       string    // trains.train_name
	TotalSeats uint32    // trains.total_seats
	IsActive   bool      // trains.is_active
	CreatedAt  time.Time // trains.created_at
}

// Schedule represents one run of a train between two stations on a
// specific calendar date.  Maps to the `train_schedules` table.  A
// schedule is immutable after creation apart from its active flag; its
// seat ledger row is created together with it.
//
// Fields:
//  ID            – primary key identifier.
//  TrainID       – train performing the run.
//  Source        – departure station.
//  Destination   – arrival station.
//  DepartureTime – time of day the train departs (HH:MM:SS).
//  ArrivalTime   – time of day the train arrives.
//  BaseFarePaise – fare per passenger in paise.
//  RunsOn        – the calendar date of this run.
//  IsActive      – whether the run is bookable.
//  CreatedAt     – creation timestamp.
type Schedule struct {
	ID            uint64    // train_schedules.id
	TrainID       uint64    // train_schedules.train_id
	Source        string    // train_schedules.source
	Destination   string    // train_schedules.destination
	DepartureTime string    // train_schedules.departure_time
	ArrivalTime   string    // train_schedules.arrival_time
	BaseFarePaise uint64    // train_schedules.base_fare_paise
	RunsOn        string    // train_schedules.runs_on (YYYY-MM-DD)
	IsActive      bool      // train_schedules.is_active
	CreatedAt     time.Time // train_schedules.created_at
}

// SeatLedger is the per-schedule seat inventory record, exactly one row
// per schedule (1:1).  BookedSeats never exceeds the train's capacity;
// Version increases by one on every successful commit and is the key of
// the conditional update used to detect concurrent writers.
//
// Fields:
//  ScheduleID  – schedule this ledger belongs to.
//  Capacity    – total seats (denormalized from the train for reads).
//  BookedSeats – seats committed so far, 0 ≤ BookedSeats ≤ Capacity.
//  Version     – monotonically increasing commit counter, starts at 0.
//  UpdatedAt   – last modification timestamp.
type SeatLedger struct {
	ScheduleID  uint64    // seat_ledger.schedule_id
	Capacity    uint32    // trains.total_seats (joined)
	BookedSeats uint32    // seat_ledger.booked_seats
	Version     uint64    // seat_ledger.version
	UpdatedAt   time.Time // seat_ledger.updated_at
}

// Available returns the number of seats still open on this ledger.
func (l SeatLedger) Available() uint32 {
	if l.BookedSeats >= l.Capacity {
		return 0
	}
	return l.Capacity - l.BookedSeats
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/railway-reservation/internal/model"
)

// ScheduleRepo provides access to train schedules and their search
// surface.  A schedule's seat ledger row is created in the same
// transaction as the schedule itself, before any booking can exist.
type ScheduleRepo struct{ DB *sql.DB }

func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{DB: db} }

// CreateTx inserts a schedule and its zero-valued seat ledger row
// within the given transaction.  The generated ID is populated on the
// passed schedule.
func (r *ScheduleRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Schedule) error {
	const q = `INSERT INTO train_schedules
	           (train_id, source, destination, departure_time, arrival_time, base_fare_paise, runs_on)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		s.TrainID, s.Source, s.Destination, s.DepartureTime, s.ArrivalTime, s.BaseFarePaise, s.RunsOn)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// The ledger starts at booked_seats=0, version=0 (column defaults).
	_, err = tx.ExecContext(ctx, `INSERT INTO seat_ledger (schedule_id) VALUES (?)`, s.ID)
	return err
}

// ActiveRun is the read shape the booking coordinator consumes: the
// schedule joined with its train's capacity and fare, restricted to
// active schedules of active trains.
type ActiveRun struct {
	ScheduleID    uint64
	TrainID       uint64
	TrainNumber   string
	TrainName     string
	Capacity      uint32
	BaseFarePaise uint64
	RunsOn        string
	DepartureTime string
	ArrivalTime   string
	Source        string
	Destination   string
}

// GetActiveRun returns the active run for a schedule ID, or
// ErrScheduleNotFound when the schedule does not exist, is inactive,
// or belongs to an inactive train.
func (r *ScheduleRepo) GetActiveRun(ctx context.Context, scheduleID uint64) (ActiveRun, error) {
	const q = `SELECT s.id, t.id, t.train_number, t.train_name, t.total_seats,
	                  s.base_fare_paise, s.runs_on, s.departure_time, s.arrival_time,
	                  s.source, s.destination
	           FROM train_schedules s
	           JOIN trains t ON t.id = s.train_id
	           WHERE s.id = ? AND s.is_active = 1 AND t.is_active = 1`
	var run ActiveRun
	err := r.DB.QueryRowContext(ctx, q, scheduleID).Scan(
		&run.ScheduleID, &run.TrainID, &run.TrainNumber, &run.TrainName, &run.Capacity,
		&run.BaseFarePaise, &run.RunsOn, &run.DepartureTime, &run.ArrivalTime,
		&run.Source, &run.Destination,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ActiveRun{}, ErrScheduleNotFound
	}
	return run, err
}

// SearchQuery defines filters and pagination for the schedule search.
type SearchQuery struct {
	Source      string
	Destination string
	Date        string // optional, YYYY-MM-DD
	Limit       int
	Offset      int
}

// SearchRow is one search result: schedule, train and live seat counts.
type SearchRow struct {
	ScheduleID     uint64 `json:"id"`
	TrainNumber    string `json:"train_number"`
	TrainName      string `json:"train_name"`
	Source         string `json:"source"`
	Destination    string `json:"destination"`
	DepartureTime  string `json:"departure_time"`
	ArrivalTime    string `json:"arrival_time"`
	BaseFarePaise  uint64 `json:"base_fare_paise"`
	RunsOn         string `json:"travel_date"`
	TotalSeats     uint32 `json:"total_seats"`
	AvailableSeats uint32 `json:"available_seats"`
}

// Search returns active schedules between two stations, optionally on a
// specific date, ordered by travel date then departure time.  Station
// matching is case-insensitive.  The seat ledger is joined so each row
// carries the availability visible at query time; the count is
// informational only and never authoritative for booking.
func (r *ScheduleRepo) Search(ctx context.Context, q SearchQuery) ([]SearchRow, int64, error) {
	where := []string{
		"LOWER(s.source) = LOWER(?)",
		"LOWER(s.destination) = LOWER(?)",
		"s.is_active = 1",
		"t.is_active = 1",
	}
	args := []any{strings.TrimSpace(q.Source), strings.TrimSpace(q.Destination)}
	if q.Date != "" {
		where = append(where, "s.runs_on = ?")
		args = append(args, q.Date)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM train_schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT
			s.id,
			t.train_number,
			t.train_name,
			s.source,
			s.destination,
			TIME_FORMAT(s.departure_time, '%H:%i:%s') AS departure_time,
			TIME_FORMAT(s.arrival_time, '%H:%i:%s') AS arrival_time,
			s.base_fare_paise,
			DATE_FORMAT(s.runs_on, '%Y-%m-%d') AS runs_on,
			t.total_seats,
			GREATEST(CAST(t.total_seats AS SIGNED) - CAST(l.booked_seats AS SIGNED), 0) AS available_seats
		FROM train_schedules s
		JOIN trains t ON t.id = s.train_id
		JOIN seat_ledger l ON l.schedule_id = s.id
		WHERE ` + cond + `
		ORDER BY s.runs_on ASC, s.departure_time ASC
		LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	results := make([]SearchRow, 0)
	for rows.Next() {
		var sr SearchRow
		if err := rows.Scan(
			&sr.ScheduleID, &sr.TrainNumber, &sr.TrainName, &sr.Source, &sr.Destination,
			&sr.DepartureTime, &sr.ArrivalTime, &sr.BaseFarePaise, &sr.RunsOn,
			&sr.TotalSeats, &sr.AvailableSeats,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

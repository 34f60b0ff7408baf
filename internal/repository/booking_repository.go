package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// BookingRepo provides persistence for bookings and their passengers.
// Booking and passenger rows are only ever created inside the booking
// coordinator's transaction, together with the ledger update, so every
// write here is a ...Tx variant.  Reads run outside any transaction.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// BookingRecord mirrors the schema of the bookings table.  It is used
// by the repository when constructing rows; business logic should use
// model.Booking instead.
type BookingRecord struct {
	ID             uint64
	PNR            string
	UserID         uint64
	ScheduleID     uint64
	NumPassengers  uint32
	TotalFarePaise uint64
	Status         string
	ConfirmedAt    *time.Time
}

// PassengerRecord mirrors the passengers table.  Only fields needed for
// insertion are exposed; the booking ID is filled in by the caller.
type PassengerRecord struct {
	BookingID  uint64
	Name       string
	Age        uint8
	Gender     string
	SeatNumber uint32
}

// PNRExistsTx reports whether a booking with the given PNR already
// exists, observed from within the transaction.  Collisions are
// astronomically unlikely but checked, not assumed.
func (r *BookingRepo) PNRExistsTx(ctx context.Context, tx *sql.Tx, pnr string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE pnr = ? LIMIT 1`, pnr).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a booking row within the given transaction and
// populates the generated ID on the record.  The caller commits or
// rolls back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *BookingRecord) error {
	const q = `INSERT INTO bookings
	           (pnr, user_id, schedule_id, num_passengers, total_fare_paise, status, confirmed_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.PNR, b.UserID, b.ScheduleID, b.NumPassengers, b.TotalFarePaise, b.Status, b.ConfirmedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreatePassengersBulkTx inserts all passenger rows of a booking in a
// single statement.  Passing an empty slice has no effect.
func (r *BookingRepo) CreatePassengersBulkTx(ctx context.Context, tx *sql.Tx, passengers []PassengerRecord) error {
	if len(passengers) == 0 {
		return nil
	}
	query := `INSERT INTO passengers (booking_id, name, age, gender, seat_number) VALUES `
	args := make([]interface{}, 0, len(passengers)*5)
	for i, p := range passengers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, p.BookingID, p.Name, p.Age, p.Gender, p.SeatNumber)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// BookingPassenger is the passenger shape embedded in booking details.
type BookingPassenger struct {
	Name       string `json:"name"`
	Age        uint8  `json:"age"`
	Gender     string `json:"gender"`
	SeatNumber uint32 `json:"seat_number"`
}

// BookingDetail is a booking together with its train, schedule and
// passenger information, as returned to customers.
type BookingDetail struct {
	ID             uint64             `json:"id"`
	PNR            string             `json:"pnr"`
	Status         string             `json:"status"`
	NumPassengers  uint32             `json:"num_passengers"`
	TotalFarePaise uint64             `json:"total_fare_paise"`
	BookedAt       string             `json:"booked_at"`
	ConfirmedAt    *string            `json:"confirmed_at,omitempty"`
	TrainNumber    string             `json:"train_number"`
	TrainName      string             `json:"train_name"`
	Source         string             `json:"source"`
	Destination    string             `json:"destination"`
	DepartureTime  string             `json:"departure_time"`
	ArrivalTime    string             `json:"arrival_time"`
	TravelDate     string             `json:"travel_date"`
	Passengers     []BookingPassenger `json:"passengers"`
}

const bookingDetailColumns = `b.id, b.pnr, b.status, b.num_passengers, b.total_fare_paise,
	b.booked_at, b.confirmed_at,
	t.train_number, t.train_name,
	s.source, s.destination,
	TIME_FORMAT(s.departure_time, '%H:%i:%s'),
	TIME_FORMAT(s.arrival_time, '%H:%i:%s'),
	DATE_FORMAT(s.runs_on, '%Y-%m-%d')`

func scanBookingDetail(scan func(dest ...any) error) (BookingDetail, error) {
	var (
		d           BookingDetail
		bookedAt    time.Time
		confirmedAt sql.NullTime
	)
	err := scan(
		&d.ID, &d.PNR, &d.Status, &d.NumPassengers, &d.TotalFarePaise,
		&bookedAt, &confirmedAt,
		&d.TrainNumber, &d.TrainName,
		&d.Source, &d.Destination,
		&d.DepartureTime, &d.ArrivalTime, &d.TravelDate,
	)
	if err != nil {
		return BookingDetail{}, err
	}
	d.BookedAt = bookedAt.UTC().Format(time.RFC3339)
	if confirmedAt.Valid {
		iso := confirmedAt.Time.UTC().Format(time.RFC3339)
		d.ConfirmedAt = &iso
	}
	d.Passengers = []BookingPassenger{}
	return d, nil
}

// ListByUser returns all bookings of a user with train and passenger
// details, newest first.  When no bookings exist an empty slice is
// returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := `SELECT ` + bookingDetailColumns + `
	      FROM bookings b
	      JOIN train_schedules s ON s.id = b.schedule_id
	      JOIN trains t ON t.id = s.train_id
	      WHERE b.user_id = ?
	      ORDER BY b.booked_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		d, err := scanBookingDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Populate passengers for all bookings in a single query.
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	pq := `SELECT booking_id, name, age, gender, seat_number
	       FROM passengers
	       WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	       ORDER BY booking_id, seat_number`
	prows, err := r.DB.QueryContext(ctx, pq, ids...)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var bid uint64
		var p BookingPassenger
		if err := prows.Scan(&bid, &p.Name, &p.Age, &p.Gender, &p.SeatNumber); err != nil {
			return nil, err
		}
		idx, ok := index[bid]
		if !ok {
			continue
		}
		details[idx].Passengers = append(details[idx].Passengers, p)
	}
	return details, prows.Err()
}

// GetByPNRForUser returns one booking by its PNR, restricted to the
// calling user.  A PNR that does not exist and a PNR belonging to a
// different user both surface as ErrBookingNotFound.
func (r *BookingRepo) GetByPNRForUser(ctx context.Context, pnr string, userID uint64) (*BookingDetail, error) {
	pnr = strings.ToUpper(strings.TrimSpace(pnr))
	q := `SELECT ` + bookingDetailColumns + `
	      FROM bookings b
	      JOIN train_schedules s ON s.id = b.schedule_id
	      JOIN trains t ON t.id = s.train_id
	      WHERE b.pnr = ? AND b.user_id = ?`
	d, err := scanBookingDetail(r.DB.QueryRowContext(ctx, q, pnr, userID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	const pq = `SELECT name, age, gender, seat_number
	            FROM passengers WHERE booking_id = ? ORDER BY seat_number`
	rows, err := r.DB.QueryContext(ctx, pq, d.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p BookingPassenger
		if err := rows.Scan(&p.Name, &p.Age, &p.Gender, &p.SeatNumber); err != nil {
			return nil, err
		}
		d.Passengers = append(d.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

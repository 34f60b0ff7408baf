package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/railway-reservation/internal/model"
)

// TrainRepo encapsulates database operations on the 'trains' table.
type TrainRepo struct{ DB *sql.DB }

func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{DB: db} }

// UpsertTx creates a train or refreshes an existing one by its unique
// number within the given transaction.  On update the name and seat
// count are replaced and the train is reactivated.  The returned flag
// reports whether a new row was inserted.  LAST_INSERT_ID(id) makes
// LastInsertId yield the existing row's id on the update path.
func (r *TrainRepo) UpsertTx(ctx context.Context, tx *sql.Tx, number, name string, totalSeats uint32) (uint64, bool, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	const q = `INSERT INTO trains (train_number, train_name, total_seats)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               id = LAST_INSERT_ID(id),
	               train_name = VALUES(train_name),
	               total_seats = VALUES(total_seats),
	               is_active = 1`
	res, err := tx.ExecContext(ctx, q, number, name, totalSeats)
	if err != nil {
		return 0, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	// MySQL reports 1 affected row for an insert and 2 for an update.
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	return uint64(id), n == 1, nil
}

// GetByNumber fetches a train by its unique number.
func (r *TrainRepo) GetByNumber(ctx context.Context, number string) (model.Train, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	var t model.Train
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, train_number, train_name, total_seats, is_active, created_at FROM trains WHERE train_number=? LIMIT 1",
		number).Scan(&t.ID, &t.Number, &t.Name, &t.TotalSeats, &t.IsActive, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Train{}, ErrTrainNotFound
	}
	return t, err
}

// ListActive returns all active trains ordered by number.
func (r *TrainRepo) ListActive(ctx context.Context) ([]model.Train, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, train_number, train_name, total_seats, is_active, created_at FROM trains WHERE is_active=1 ORDER BY train_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trains := make([]model.Train, 0)
	for rows.Next() {
		var t model.Train
		if err := rows.Scan(&t.ID, &t.Number, &t.Name, &t.TotalSeats, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		trains = append(trains, t)
	}
	return trains, rows.Err()
}

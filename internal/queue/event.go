// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully confirmed.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID      uint64   `json:"booking_id"`
	PNR            string   `json:"pnr"`
	UserID         uint64   `json:"user_id"`
	ScheduleID     uint64   `json:"schedule_id"`
	TrainNumber    string   `json:"train_number"`
	TrainName      string   `json:"train_name"`
	Source         string   `json:"source"`
	Destination    string   `json:"destination"`
	TravelDate     string   `json:"travel_date"`
	DepartureTime  string   `json:"departure_time"`
	SeatNumbers    []uint32 `json:"seats"`
	TotalFarePaise uint64   `json:"total_fare_paise"`
	ConfirmedAt    string   `json:"confirmed_at"`
}

package model

import "testing"

func TestSeatLedgerAvailable(t *testing.T) {
	cases := []struct {
		name     string
		capacity uint32
		booked   uint32
		want     uint32
	}{
		{"empty", 100, 0, 100},
		{"partial", 100, 37, 63},
		{"full", 100, 100, 0},
		{"over capacity clamps to zero", 100, 120, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := SeatLedger{Capacity: tc.capacity, BookedSeats: tc.booked}
			if got := l.Available(); got != tc.want {
				t.Fatalf("Available() = %d, want %d", got, tc.want)
			}
		})
	}
}

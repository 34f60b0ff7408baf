package queue

import (
	"strings"
	"testing"
)

func TestFormatBookingLine(t *testing.T) {
	ev := BookingConfirmedEvent{
		BookingID:      21,
		PNR:            "AB12CD34EF",
		UserID:         99,
		TrainNumber:    "12951",
		TrainName:      "Rajdhani Express",
		Source:         "Delhi",
		Destination:    "Mumbai",
		TravelDate:     "2030-06-01",
		DepartureTime:  "08:00:00",
		SeatNumbers:    []uint32{4, 5},
		TotalFarePaise: 300000,
		ConfirmedAt:    "2030-05-20T10:00:00Z",
	}
	line := formatBookingLine(ev)
	for _, want := range []string{
		"pnr=AB12CD34EF",
		"booking_id=21",
		"user_id=99",
		`train="12951 Rajdhani Express"`,
		`route="Delhi -> Mumbai"`,
		"seats=[4,5]",
		"fare=300000 paise",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %q: %s", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatal("log line must end with a newline")
	}
}

func TestFormatBookingLineNoSeats(t *testing.T) {
	line := formatBookingLine(BookingConfirmedEvent{PNR: "X"})
	if !strings.Contains(line, "seats=[]") {
		t.Fatalf("expected empty seat list, got: %s", line)
	}
}

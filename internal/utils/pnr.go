package utils

import "crypto/rand"

// pnrAlphabet is the character set of reservation codes.  Upper-case
// letters and digits keep codes unambiguous when read over the phone.
const pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PNRLength is the fixed length of a reservation code.
const PNRLength = 10

// NewPNR draws a random 10-character alphanumeric reservation code.
// Uniqueness is not guaranteed here; the booking coordinator checks the
// generated code against existing bookings and redraws on collision.
func NewPNR() (string, error) {
	buf := make([]byte, PNRLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, PNRLength)
	for i, b := range buf {
		out[i] = pnrAlphabet[int(b)%len(pnrAlphabet)]
	}
	return string(out), nil
}

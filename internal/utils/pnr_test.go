package utils

import (
	"strings"
	"testing"
)

func TestNewPNRShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		pnr, err := NewPNR()
		if err != nil {
			t.Fatalf("NewPNR: %v", err)
		}
		if len(pnr) != PNRLength {
			t.Fatalf("pnr %q has length %d, want %d", pnr, len(pnr), PNRLength)
		}
		for _, ch := range pnr {
			if !strings.ContainsRune(pnrAlphabet, ch) {
				t.Fatalf("pnr %q contains %q outside the alphabet", pnr, ch)
			}
		}
		seen[pnr] = true
	}
	// 500 draws from a 36^10 space colliding down to a handful would
	// mean the generator is broken.
	if len(seen) < 490 {
		t.Fatalf("only %d distinct codes out of 500 draws", len(seen))
	}
}

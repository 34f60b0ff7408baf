package handler

import "testing"

func TestNormalizeClock(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"08:00", "08:00:00"},
		{"08:00:30", "08:00:30"},
		{" 23:59 ", "23:59:00"},
		{"8am", ""},
		{"25:00", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeClock(tc.in); got != tc.want {
			t.Fatalf("normalizeClock(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package schedule

import (
	"testing"
	"time"
)

func TestNormalizeISO(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2025-06-26T14:00:00Z", "2025-06-26T14:00:00+00:00"},
		{"2025-06-26T14:00:00+05:30", "2025-06-26T14:00:00+05:30"},
		// URL decoding turns "+00:00" into " 00:00".
		{"2025-06-26T14:00:00 00:00", "2025-06-26T14:00:00+00:00"},
		{"  2025-06-26T14:00:00Z  ", "2025-06-26T14:00:00+00:00"},
	}
	for _, tc := range cases {
		if got := NormalizeISO(tc.in); got != tc.want {
			t.Errorf("NormalizeISO(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseISORoundTrip(t *testing.T) {
	orig := time.Date(2025, time.June, 26, 14, 30, 0, 0, time.UTC)

	serialized := orig.Format(time.RFC3339) // trailing Z
	parsed, err := ParseISO(serialized)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("round trip drifted: %v != %v", parsed, orig)
	}
}

func TestParseISORejectsGarbage(t *testing.T) {
	if _, err := ParseISO("june 26th at 2"); err == nil {
		t.Error("expected error for non-ISO text")
	}
}

func TestFormatSlot(t *testing.T) {
	// 08:30 UTC is 14:00 IST.
	at := time.Date(2025, time.June, 26, 8, 30, 0, 0, time.UTC)
	if got, want := FormatSlot(at), "June 26, 2025, 2:00 PM"; got != want {
		t.Errorf("FormatSlot = %q, want %q", got, want)
	}
}

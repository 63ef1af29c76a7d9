package utils

import (
	"testing"
	"time"
)

func TestStartOfWeek_IsMonday(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"2025-01-01", "2024-12-30"}, // Wednesday
		{"2024-12-30", "2024-12-30"}, // Monday
		{"2025-01-05", "2024-12-30"}, // Sunday
	}
	for _, tc := range cases {
		d, _ := time.Parse(DateLayout, tc.in)
		got := StartOfWeek(d.Add(15 * time.Hour)).Format(DateLayout)
		if got != tc.expected {
			t.Fatalf("StartOfWeek(%s) expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestEndOfDay_StaysOnSameDay(t *testing.T) {
	d := time.Date(2025, 1, 7, 10, 30, 0, 0, time.UTC)
	end := EndOfDay(d)
	if end.Day() != 7 || end.Hour() != 23 || end.Minute() != 59 {
		t.Fatalf("unexpected end of day %s", end)
	}
}

func TestNormalizeWorkerName(t *testing.T) {
	if got := NormalizeWorkerName("  Juan Dela Cruz "); got != "juan dela cruz" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := NormalizeWorkerName("   "); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

package orders

import (
	"errors"
	"testing"
	"time"
)

func TestYearPrefix(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-03-14", "OR25"},
		{"2026-01-01", "OR26"},
		{"1999-12-31", "OR99"},
		{"2100-06-15", "OR00"},
	}
	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatalf("bad date %s: %v", tt.date, err)
		}
		if got := yearPrefix(d); got != tt.want {
			t.Errorf("yearPrefix(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestFormatOrderID(t *testing.T) {
	tests := []struct {
		seq  int
		want string
	}{
		{1, "OR25-000001"},
		{42, "OR25-000042"},
		{999999, "OR25-999999"},
	}
	for _, tt := range tests {
		if got := formatOrderID("OR25", tt.seq); got != tt.want {
			t.Errorf("formatOrderID(OR25, %d) = %s, want %s", tt.seq, got, tt.want)
		}
	}
}

func TestParseSeq(t *testing.T) {
	tests := []struct {
		id   string
		want int
		ok   bool
	}{
		{"OR25-000001", 1, true},
		{"OR25-000420", 420, true},
		{"OR25-999999", 999999, true},
		{"OR25-", 0, false},
		{"OR25", 0, false},
		{"OR25-abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseSeq(tt.id)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseSeq(%q) = (%d, %v), want (%d, %v)", tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNextOrderID(t *testing.T) {
	tests := []struct {
		name   string
		lastID string
		want   string
	}{
		{"empty year starts at one", "", "OR25-000001"},
		{"increments last", "OR25-000041", "OR25-000042"},
		{"malformed last restarts at one", "OR25-bogus", "OR25-000001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextOrderID("OR25", tt.lastID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("nextOrderID(OR25, %q) = %s, want %s", tt.lastID, got, tt.want)
			}
		})
	}
}

func TestNextOrderID_Overflow(t *testing.T) {
	_, err := nextOrderID("OR25", "OR25-999999")
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if !errors.Is(err, ErrIDExhausted) {
		t.Errorf("expected ErrIDExhausted, got %v", err)
	}
}

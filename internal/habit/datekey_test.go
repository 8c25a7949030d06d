package habit

import (
	"testing"
	"time"
)

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2025-06-01", false},
		{"2024-02-29", false}, // leap day
		{"2025-02-29", true},
		{"2025-6-1", true}, // non-canonical
		{"2025-13-01", true},
		{"06/01/2025", true},
		{"", true},
	}

	for _, tt := range tests {
		_, err := ParseDateKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDateKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestDateKey_Ordering(t *testing.T) {
	// Lexicographic order must equal chronological order.
	a := DateKey("2025-01-31")
	b := DateKey("2025-02-01")
	if !a.Before(b) {
		t.Errorf("%s should be before %s", a, b)
	}
	if b.Before(a) {
		t.Errorf("%s should not be before %s", b, a)
	}
}

func TestDateKey_NextPrev(t *testing.T) {
	d := DateKey("2025-02-28")
	if got := d.Next(); got != "2025-03-01" {
		t.Errorf("Next() = %s, want 2025-03-01", got)
	}
	if got := DateKey("2025-03-01").Prev(); got != "2025-02-28" {
		t.Errorf("Prev() = %s, want 2025-02-28", got)
	}
	// Leap year crossing.
	if got := DateKey("2024-02-28").Next(); got != "2024-02-29" {
		t.Errorf("Next() = %s, want 2024-02-29", got)
	}
}

func TestDateKey_Weekday(t *testing.T) {
	if got := DateKey("2025-06-02").Weekday(); got != time.Monday {
		t.Errorf("Weekday() = %v, want Monday", got)
	}
}

func TestDateRange_Days(t *testing.T) {
	r := DateRange{From: "2025-06-01", To: "2025-06-03"}
	days := r.Days()
	want := []DateKey{"2025-06-01", "2025-06-02", "2025-06-03"}
	if len(days) != len(want) {
		t.Fatalf("Days() returned %d keys, want %d", len(days), len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("Days()[%d] = %s, want %s", i, days[i], want[i])
		}
	}

	// Inverted range is empty, not an error.
	if got := (DateRange{From: "2025-06-03", To: "2025-06-01"}).Days(); got != nil {
		t.Errorf("inverted range Days() = %v, want nil", got)
	}
}

func TestNewDateKey(t *testing.T) {
	ts := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	if got := NewDateKey(ts); got != "2025-06-01" {
		t.Errorf("NewDateKey() = %s, want 2025-06-01", got)
	}
}

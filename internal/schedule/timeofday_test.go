package schedule

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 9*60 + 30},
		{in: "23:59", want: 23*60 + 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "09-30", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("ParseTimeOfDay(%q).String() = %q, want round-trip", tt.in, got.String())
		}
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    Range
		wantErr bool
	}{
		{in: "12:00-13:00", want: Range{Start: 12 * 60, End: 13 * 60}},
		{in: "00:00-23:59", want: Range{Start: 0, End: 23*60 + 59}},
		{in: "13:00-12:00", wantErr: true}, // end before start
		{in: "12:00-12:00", wantErr: true}, // empty range
		{in: "12:00/13:00", wantErr: true},
		{in: "12:00", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRange(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRange(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRange(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRangeOverlaps(t *testing.T) {
	lunch := Range{Start: 12 * 60, End: 13 * 60} // 12:00-13:00
	tests := []struct {
		name       string
		start, end TimeOfDay
		want       bool
	}{
		{name: "fully inside", start: 12 * 60, end: 12*60 + 30, want: true},
		{name: "straddles start", start: 11*60 + 30, end: 12*60 + 30, want: true},
		{name: "straddles end", start: 12*60 + 30, end: 13*60 + 30, want: true},
		{name: "contains break", start: 11 * 60, end: 14 * 60, want: true},
		{name: "ends exactly at break start", start: 11 * 60, end: 12 * 60, want: false},
		{name: "starts exactly at break end", start: 13 * 60, end: 14 * 60, want: false},
		{name: "well before", start: 9 * 60, end: 10 * 60, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lunch.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-16")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2025-06-16" {
		t.Errorf("String() = %q, want 2025-06-16", d.String())
	}
	if d.DayName() != "monday" {
		t.Errorf("DayName() = %q, want monday", d.DayName())
	}
	if d.Weekday() != time.Monday {
		t.Errorf("Weekday() = %v, want Monday", d.Weekday())
	}

	for _, bad := range []string{"16-06-2025", "2025/06/16", "2025-13-01", "not-a-date", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", bad)
		}
	}
}

func TestDateAt(t *testing.T) {
	d := NewDate(2025, time.June, 16)
	got := d.At(TimeOfDay(14*60 + 30))
	want := time.Date(2025, time.June, 16, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At(14:30) = %v, want %v", got, want)
	}
}

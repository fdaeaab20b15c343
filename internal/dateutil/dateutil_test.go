package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, err := ParseDate("2025-01-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("empty defaults to today", func(t *testing.T) {
		got, err := ParseDate("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		today := TruncateToDay(time.Now())
		if !got.Equal(today) {
			t.Errorf("got %v, want %v", got, today)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := ParseDate("01-15-2025")
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("got error %v, want %v", err, ErrInvalidDateFormat)
		}
	})
}

func TestNewDateRange(t *testing.T) {
	t.Run("valid date range", func(t *testing.T) {
		dr, err := NewDateRange("2025-01-15", "2025-01-20")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if FormatDate(dr.Start) != "2025-01-15" {
			t.Errorf("got start %v, want 2025-01-15", dr.Start)
		}
		if FormatDate(dr.End) != "2025-01-20" {
			t.Errorf("got end %v, want 2025-01-20", dr.End)
		}
	})

	t.Run("empty end defaults to start", func(t *testing.T) {
		dr, err := NewDateRange("2025-01-15", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dr.Start.Equal(dr.End) {
			t.Errorf("expected start and end to be equal, got %v and %v", dr.Start, dr.End)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := NewDateRange("2025-01-20", "2025-01-15")
		if !errors.Is(err, ErrEndDateBeforeStart) {
			t.Errorf("got error %v, want %v", err, ErrEndDateBeforeStart)
		}
	})

	t.Run("invalid end", func(t *testing.T) {
		_, err := NewDateRange("2025-01-15", "Jan 20")
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("got error %v, want %v", err, ErrInvalidDateFormat)
		}
	})
}

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2024-06-03", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-6-3", false},
		{"", false},
		{"2024-06-03T00:00:00Z", false},
	}

	for _, tt := range tests {
		if got := IsValidDate(tt.input); got != tt.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTruncateAndEndOfDay(t *testing.T) {
	in := time.Date(2024, 6, 3, 14, 35, 12, 500, time.UTC)

	if got := TruncateToDay(in); !got.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("TruncateToDay = %v", got)
	}

	end := EndOfDay(in)
	if end.Day() != 3 || end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDay = %v", end)
	}
	if next := end.Add(time.Nanosecond); next.Day() != 4 {
		t.Errorf("EndOfDay + 1ns should be the next day, got %v", next)
	}
}

func TestParseRelativeDate(t *testing.T) {
	// Wednesday
	ref := time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  string
	}{
		{"", "2024-06-05"},
		{"today", "2024-06-05"},
		{"Tomorrow", "2024-06-06"},
		{"yesterday", "2024-06-04"},
		{"next-week", "2024-06-12"},
		{"last-week", "2024-05-29"},
		{"friday", "2024-06-07"},
		{"wednesday", "2024-06-12"},
		{"sunday", "2024-06-09"},
		{"2024-01-01", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRelativeDate(tt.input, ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if FormatDate(got) != tt.want {
				t.Errorf("ParseRelativeDate(%q) = %s, want %s", tt.input, FormatDate(got), tt.want)
			}
		})
	}
}

func TestParseRelativeDate_Errors(t *testing.T) {
	ref := time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)
	for _, input := range []string{"someday", "next-friday", "2024/06/05"} {
		if _, err := ParseRelativeDate(input, ref); !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("ParseRelativeDate(%q) error = %v, want %v", input, err, ErrInvalidDateFormat)
		}
	}
}

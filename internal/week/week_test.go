package week

import (
	"testing"
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStartEnd(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2024, 6, 5, 15, 30, 0, 0, time.UTC), date(2024, 6, 2)},
		{"sunday", time.Date(2024, 6, 2, 23, 0, 0, 0, time.UTC), date(2024, 6, 2)},
		{"saturday", time.Date(2024, 6, 8, 1, 0, 0, 0, time.UTC), date(2024, 6, 2)},
		{"across month", time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC), date(2024, 6, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Start(tt.in); !got.Equal(tt.want) {
				t.Errorf("Start(%v) = %v, want %v", tt.in, got, tt.want)
			}
			end := End(tt.in)
			if end.Weekday() != time.Saturday || end.Hour() != 23 || end.Minute() != 59 {
				t.Errorf("End(%v) = %v, want Saturday end of day", tt.in, end)
			}
		})
	}
}

func TestDates(t *testing.T) {
	got := Dates(date(2024, 6, 5))
	want := [7]string{"2024-06-02", "2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06", "2024-06-07", "2024-06-08"}
	if got != want {
		t.Errorf("Dates = %v, want %v", got, want)
	}
	if !Contains(date(2024, 6, 5), "2024-06-08") {
		t.Error("expected Saturday to be in the week")
	}
	if Contains(date(2024, 6, 5), "2024-06-09") {
		t.Error("expected next Sunday to be outside the week")
	}
}

func TestCampaignActiveInWeek(t *testing.T) {
	ws := Start(date(2024, 6, 5))
	we := End(date(2024, 6, 5))

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"fully inside", date(2024, 6, 3), date(2024, 6, 4), true},
		{"ends on week start", date(2024, 5, 1), date(2024, 6, 2), true},
		{"starts on week end", date(2024, 6, 8), date(2024, 7, 1), true},
		{"ends before week", date(2024, 5, 1), date(2024, 6, 1), false},
		{"starts after week", date(2024, 6, 9), date(2024, 7, 1), false},
		{"spans the week", date(2024, 1, 1), date(2024, 12, 31), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &campaign.Campaign{StartDate: tt.start, EndDate: tt.end}
			if got := CampaignActiveInWeek(c, ws, we); got != tt.want {
				t.Errorf("CampaignActiveInWeek = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	c := &campaign.Campaign{StartDate: date(2024, 6, 4), EndDate: date(2024, 6, 6)}
	bounds := DayBounds(c, Dates(date(2024, 6, 5)))

	editable := 0
	for _, b := range bounds {
		if b.Editable() {
			editable++
		}
	}
	if editable != 3 {
		t.Errorf("expected 3 editable days, got %d", editable)
	}
	if !bounds[0].IsBeforeStart || !bounds[1].IsBeforeStart {
		t.Error("Sunday and Monday should be before start")
	}
	if !bounds[2].IsStartDay {
		t.Error("Tuesday should be the start day")
	}
	if !bounds[4].IsEndDay {
		t.Error("Thursday should be the end day")
	}
	if !bounds[5].IsAfterEnd || !bounds[6].IsAfterEnd {
		t.Error("Friday and Saturday should be after end")
	}
	if !DateInRange(c, "2024-06-06") || DateInRange(c, "2024-06-07") {
		t.Error("DateInRange should be inclusive of the end date only")
	}
}

func TestIsSlotInPast(t *testing.T) {
	dates := Dates(date(2024, 6, 5))
	// Monday 2024-06-03, slot 16 starts 08:00 UTC.
	slotStart := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one second before start", slotStart.Add(-time.Second), false},
		{"exactly at start", slotStart, false},
		{"one second after start", slotStart.Add(time.Second), true},
		{"next day", slotStart.AddDate(0, 0, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSlotInPast(1, 16, dates, tt.now); got != tt.want {
				t.Errorf("IsSlotInPast = %v, want %v", got, tt.want)
			}
		})
	}

	if IsSlotInPast(7, 16, dates, slotStart.AddDate(1, 0, 0)) {
		t.Error("out of range day index should not be past")
	}
}

func TestWindow(t *testing.T) {
	w := NewWindow(date(2024, 6, 5))

	if !w.Current().Equal(date(2024, 6, 2)) {
		t.Errorf("Current = %v", w.Current())
	}
	if !w.Previous().Equal(date(2024, 5, 26)) || !w.Next().Equal(date(2024, 6, 9)) {
		t.Errorf("neighbours = %v, %v", w.Previous(), w.Next())
	}

	w.ShiftForward()
	if !w.Current().Equal(date(2024, 6, 9)) || !w.Next().Equal(date(2024, 6, 16)) {
		t.Errorf("after ShiftForward current = %v next = %v", w.Current(), w.Next())
	}

	w.ShiftBackward()
	w.ShiftBackward()
	if !w.Current().Equal(date(2024, 5, 26)) || !w.Previous().Equal(date(2024, 5, 19)) {
		t.Errorf("after ShiftBackward current = %v previous = %v", w.Current(), w.Previous())
	}

	w.Shift(2)
	if !w.Current().Equal(date(2024, 6, 9)) {
		t.Errorf("after Shift(2) current = %v", w.Current())
	}

	w.Today(time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC))
	if got := w.Label(); got != "Sun Jun 2 - Sat Jun 8, 2024" {
		t.Errorf("Label = %q", got)
	}
}

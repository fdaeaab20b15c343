// Package week evaluates the temporal constraints of the weekly schedule:
// displayed-week boundaries, campaign/week overlap, per-day campaign range
// classification and past-slot detection.
//
// Weeks run Sunday through Saturday. All functions are pure; callers pass
// the current time explicitly.
package week

import (
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/dateutil"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// Start returns the Sunday (00:00) of the week containing date.
func Start(date time.Time) time.Time {
	d := dateutil.TruncateToDay(date)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// End returns the last instant of the Saturday of the week containing date.
func End(date time.Time) time.Time {
	return dateutil.EndOfDay(Start(date).AddDate(0, 0, 6))
}

// Dates returns the 7 slot dates of the week containing date, Sunday first.
func Dates(date time.Time) [grid.DaysPerWeek]string {
	start := Start(date)
	var out [grid.DaysPerWeek]string
	for i := range out {
		out[i] = dateutil.FormatDate(start.AddDate(0, 0, i))
	}
	return out
}

// DateList is Dates as a slice.
func DateList(date time.Time) []string {
	d := Dates(date)
	return d[:]
}

// Contains reports whether slotDate falls inside the week containing date.
func Contains(date time.Time, slotDate string) bool {
	for _, d := range Dates(date) {
		if d == slotDate {
			return true
		}
	}
	return false
}

// CampaignActiveInWeek reports whether the campaign's inclusive date range
// overlaps [weekStart, weekEnd].
func CampaignActiveInWeek(c *campaign.Campaign, weekStart, weekEnd time.Time) bool {
	start := dateutil.TruncateToDay(c.StartDate)
	end := dateutil.EndOfDay(c.EndDate)
	return !start.After(weekEnd) && !end.Before(weekStart)
}

// DayBound classifies one displayed day against a campaign's date range.
type DayBound struct {
	Date          string
	IsBeforeStart bool
	IsAfterEnd    bool
	IsStartDay    bool
	IsEndDay      bool
}

// Editable reports whether the campaign may be edited on this day.
func (b DayBound) Editable() bool {
	return !b.IsBeforeStart && !b.IsAfterEnd
}

// DayBounds classifies each of the 7 displayed days against c's range.
func DayBounds(c *campaign.Campaign, dates [grid.DaysPerWeek]string) [grid.DaysPerWeek]DayBound {
	start := dateutil.FormatDate(c.StartDate)
	end := dateutil.FormatDate(c.EndDate)

	var out [grid.DaysPerWeek]DayBound
	for i, d := range dates {
		// YYYY-MM-DD strings order the same as the dates they encode.
		out[i] = DayBound{
			Date:          d,
			IsBeforeStart: d < start,
			IsAfterEnd:    d > end,
			IsStartDay:    d == start,
			IsEndDay:      d == end,
		}
	}
	return out
}

// DateInRange reports whether slotDate lies within c's inclusive range.
func DateInRange(c *campaign.Campaign, slotDate string) bool {
	return slotDate >= dateutil.FormatDate(c.StartDate) && slotDate <= dateutil.FormatDate(c.EndDate)
}

// IsSlotInPast reports whether the slot at dates[dayIndex]/slotIndex starts
// strictly before now. The slot instant is built in now's location.
func IsSlotInPast(dayIndex, slotIndex int, dates [grid.DaysPerWeek]string, now time.Time) bool {
	if dayIndex < 0 || dayIndex >= grid.DaysPerWeek {
		return false
	}
	return IsDateSlotInPast(dates[dayIndex], slotIndex, now)
}

// IsDateSlotInPast is IsSlotInPast addressed by slot date.
func IsDateSlotInPast(slotDate string, slotIndex int, now time.Time) bool {
	start, err := grid.SlotStart(slotDate, slotIndex, now.Location())
	if err != nil {
		return false
	}
	return start.Before(now)
}

package grid

import (
	"slices"
	"time"
)

// ScheduledSlotsForCampaign returns the slots of g that fall on one of the
// displayed week's dates, ordered by date and slot.
func ScheduledSlotsForCampaign(g Grid, weekDates []string) Grid {
	out := g.InDates(weekDates).Prune()
	slices.SortFunc(out, CompareSlots)
	return out
}

// FilterFutureSlots returns the slots whose start is at or after now.
// Malformed entries are dropped.
func FilterFutureSlots(g Grid, now time.Time) Grid {
	out := make(Grid, 0, len(g))
	for _, s := range g {
		start, err := SlotStart(s.Date, s.Index, now.Location())
		if err != nil {
			continue
		}
		if !start.Before(now) {
			out = append(out, s)
		}
	}
	return out
}

// FilterPastSlots returns the slots whose start is strictly before now.
func FilterPastSlots(g Grid, now time.Time) Grid {
	out := make(Grid, 0, len(g))
	for _, s := range g {
		start, err := SlotStart(s.Date, s.Index, now.Location())
		if err != nil {
			continue
		}
		if start.Before(now) {
			out = append(out, s)
		}
	}
	return out
}

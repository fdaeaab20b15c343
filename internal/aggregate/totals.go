package aggregate

import (
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// DayTotals sums play counts per displayed day, indexed like dates.
func DayTotals(slots []grid.Slot, dates [grid.DaysPerWeek]string) [grid.DaysPerWeek]int {
	var totals [grid.DaysPerWeek]int
	for _, s := range slots {
		for i, d := range dates {
			if s.Date == d {
				totals[i] += s.PlayCount
				break
			}
		}
	}
	return totals
}

// Peak returns the busiest slot, preferring the earliest on ties.
// ok is false when slots is empty.
func Peak(slots []grid.Slot) (peak grid.Slot, ok bool) {
	for _, s := range slots {
		if !ok || s.PlayCount > peak.PlayCount ||
			(s.PlayCount == peak.PlayCount && grid.CompareSlots(s, peak) < 0) {
			peak = s
			ok = true
		}
	}
	return peak, ok
}

// Matrix lays slots out as [day][slot] counts for rendering.
func Matrix(slots []grid.Slot, dates [grid.DaysPerWeek]string) [grid.DaysPerWeek][grid.SlotsPerDay]int {
	var m [grid.DaysPerWeek][grid.SlotsPerDay]int
	pos := make(map[string]int, len(dates))
	for i, d := range dates {
		pos[d] = i
	}
	for _, s := range slots {
		day, ok := pos[s.Date]
		if !ok || !grid.ValidIndex(s.Index) {
			continue
		}
		m[day][s.Index] += s.PlayCount
	}
	return m
}

// Package grid holds the weekly slot grid model shared by every campaign.
//
// A grid is a flat list of (date, half-hour slot, play count) entries. Grids
// are treated as immutable values: every operation returns a new Grid and
// leaves the receiver untouched, so buffers can be shared between the edit
// session, aggregation and saves without defensive copies at each call site.
package grid

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/spotgrid/internal/dateutil"
)

const (
	// SlotMinutes is the length of one slot.
	SlotMinutes = 30
	// SlotsPerDay is 24 hours * 2 slots per hour.
	SlotsPerDay = 48
	// MaxSlotIndex is the last valid slot index of a day.
	MaxSlotIndex = SlotsPerDay - 1
	// DaysPerWeek is the number of days in a displayed week.
	DaysPerWeek = 7
)

// ErrInvalidSlot is returned for slot indexes outside 0..47.
var ErrInvalidSlot = errors.New("slot index must be between 0 and 47")

// Slot is one half-hour broadcast bucket of a campaign grid.
type Slot struct {
	Date      string `json:"slot_date"`  // "YYYY-MM-DD"
	Index     int    `json:"slot_index"` // 0..47
	PlayCount int    `json:"play_count"`
}

// Grid is a campaign's weekly slot list.
// At most one entry exists per (Date, Index) after any write.
type Grid []Slot

// SlotKey identifies a slot within a grid.
type SlotKey struct {
	Date  string
	Index int
}

// Key returns the key of a date/index pair.
func Key(date string, index int) SlotKey {
	return SlotKey{Date: date, Index: index}
}

// Key returns the slot's key.
func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Index: s.Index}
}

// String formats the key as "2024-06-03#16".
func (k SlotKey) String() string {
	return fmt.Sprintf("%s#%d", k.Date, k.Index)
}

// ValidIndex reports whether index is a valid slot index.
func ValidIndex(index int) bool {
	return index >= 0 && index <= MaxSlotIndex
}

// IndexFor returns the slot index containing hour:minute.
func IndexFor(hour, minute int) int {
	idx := hour * 2
	if minute >= 30 {
		idx++
	}
	return idx
}

// IndexForTime returns the slot index containing t.
func IndexForTime(t time.Time) int {
	return IndexFor(t.Hour(), t.Minute())
}

// SlotTime converts a slot index to its start time "HH:MM".
func SlotTime(index int) string {
	return fmt.Sprintf("%02d:%02d", index/2, (index%2)*SlotMinutes)
}

// ParseSlotTime converts "HH:MM" to the slot index containing it.
func ParseSlotTime(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidSlot, s)
	}
	return IndexFor(t.Hour(), t.Minute()), nil
}

// SlotStart returns the absolute start instant of a slot in loc.
func SlotStart(date string, index int, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Time{}, dateutil.ErrInvalidDateFormat
	}
	day, err := dateutil.ParseDateIn(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), index/2, (index%2)*SlotMinutes, 0, 0, loc), nil
}

// PlayCount returns the play count at date/index, 0 when absent.
func (g Grid) PlayCount(date string, index int) int {
	for _, s := range g {
		if s.Date == date && s.Index == index {
			return s.PlayCount
		}
	}
	return 0
}

// PlayCount is the free-function form used by selectors that hold a nil grid.
func PlayCount(g Grid, date string, index int) int {
	return g.PlayCount(date, index)
}

// Clone returns a copy that shares no backing array with g.
// A nil grid clones to an empty, non-nil grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	copy(out, g)
	return out
}

// Set returns a grid with date/index set to count.
// A count of zero or less removes the entry; a positive count upserts it.
func (g Grid) Set(date string, index, count int) Grid {
	out := make(Grid, 0, len(g)+1)
	found := false
	for _, s := range g {
		if s.Date == date && s.Index == index {
			found = true
			if count > 0 {
				out = append(out, Slot{Date: date, Index: index, PlayCount: count})
			}
			continue
		}
		out = append(out, s)
	}
	if !found && count > 0 {
		out = append(out, Slot{Date: date, Index: index, PlayCount: count})
	}
	return out
}

// Merge overlays slots onto g: matching keys take the new count, other
// slots are appended. Non-positive counts remove the entry.
func (g Grid) Merge(slots []Slot) Grid {
	out := g.Clone()
	pos := make(map[SlotKey]int, len(out))
	for i, s := range out {
		pos[s.Key()] = i
	}
	for _, s := range slots {
		if i, ok := pos[s.Key()]; ok {
			out[i].PlayCount = s.PlayCount
			continue
		}
		pos[s.Key()] = len(out)
		out = append(out, s)
	}
	return out.Prune()
}

// Prune drops entries with a play count of zero or less.
func (g Grid) Prune() Grid {
	out := make(Grid, 0, len(g))
	for _, s := range g {
		if s.PlayCount > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Sanitize drops malformed entries (missing or invalid date, index out of
// range, non-positive count) and collapses duplicate keys, last write wins.
func (g Grid) Sanitize() Grid {
	out := make(Grid, 0, len(g))
	pos := make(map[SlotKey]int, len(g))
	for _, s := range g {
		if !dateutil.IsValidDate(s.Date) || !ValidIndex(s.Index) || s.PlayCount <= 0 {
			continue
		}
		if i, ok := pos[s.Key()]; ok {
			out[i] = s
			continue
		}
		pos[s.Key()] = len(out)
		out = append(out, s)
	}
	return out
}

// Equal reports whether both grids hold the same positive entries,
// ignoring order.
func (g Grid) Equal(other Grid) bool {
	a := g.counts()
	b := other.counts()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func (g Grid) counts() map[SlotKey]int {
	m := make(map[SlotKey]int, len(g))
	for _, s := range g {
		if s.PlayCount > 0 {
			m[s.Key()] = s.PlayCount
		}
	}
	return m
}

// InDates returns the entries whose date is one of dates.
func (g Grid) InDates(dates []string) Grid {
	out := make(Grid, 0)
	for _, s := range g {
		if slices.Contains(dates, s.Date) {
			out = append(out, s)
		}
	}
	return out
}

// ShiftDays moves every entry by n calendar days. Entries with an
// unparseable date are dropped.
func (g Grid) ShiftDays(n int) Grid {
	out := make(Grid, 0, len(g))
	for _, s := range g {
		d, err := time.Parse(dateutil.Layout, s.Date)
		if err != nil {
			continue
		}
		out = append(out, Slot{Date: d.AddDate(0, 0, n).Format(dateutil.Layout), Index: s.Index, PlayCount: s.PlayCount})
	}
	return out
}

// Sorted returns a copy ordered by date then slot index.
func (g Grid) Sorted() Grid {
	out := g.Clone()
	slices.SortFunc(out, CompareSlots)
	return out
}

// Total returns the sum of all play counts.
func (g Grid) Total() int {
	total := 0
	for _, s := range g {
		total += s.PlayCount
	}
	return total
}

// CompareSlots orders slots by date then index.
func CompareSlots(a, b Slot) int {
	if c := strings.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	return a.Index - b.Index
}

// String renders the grid one entry per line, for debugging and test failures.
func (g Grid) String() string {
	var b strings.Builder
	for _, s := range g.Sorted() {
		fmt.Fprintf(&b, "%s %s x%d\n", s.Date, SlotTime(s.Index), s.PlayCount)
	}
	return b.String()
}

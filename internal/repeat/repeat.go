// Package repeat expands one edited slot into a batch of slots across a day
// or the rest of a displayed week.
package repeat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/spotgrid/internal/grid"
)

var (
	ErrNothingToRepeat = errors.New("nothing to repeat: no play count at that time this week")
	ErrInvalidStep     = errors.New("step must be 1, 2 or 4 slots")
	ErrInvalidScope    = errors.New("scope must be day or week")
	ErrInvalidSlot     = errors.New("slot index must be between 0 and 47")
)

// Scope selects how far a repeat spreads.
type Scope string

const (
	// ScopeDay repeats each source later on its own date.
	ScopeDay Scope = "day"
	// ScopeWeek repeats from the first source date to the end of the week
	// inside a time range.
	ScopeWeek Scope = "week"
)

// ParseScope parses a scope name.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeDay, ScopeWeek:
		return sc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// Steps are expressed in slots: 1 = every 30m, 2 = hourly, 4 = every 2h.
const (
	StepHalfHour = 1
	StepHourly   = 2
	StepTwoHours = 4
)

// Options configures an expansion.
type Options struct {
	FilterSlot int // slot index acted upon
	Step       int
	Scope      Scope
	RangeStart int // week scope only, inclusive
	RangeEnd   int // week scope only, inclusive
}

// Validate checks the options independently of the buffer.
func (o Options) Validate() error {
	switch o.Step {
	case StepHalfHour, StepHourly, StepTwoHours:
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidStep, o.Step)
	}
	if o.Scope != ScopeDay && o.Scope != ScopeWeek {
		return fmt.Errorf("%w: got %q", ErrInvalidScope, o.Scope)
	}
	if !grid.ValidIndex(o.FilterSlot) {
		return fmt.Errorf("%w: filter slot %d", ErrInvalidSlot, o.FilterSlot)
	}
	if o.Scope == ScopeWeek && (!grid.ValidIndex(o.RangeStart) || !grid.ValidIndex(o.RangeEnd)) {
		return fmt.Errorf("%w: range %d-%d", ErrInvalidSlot, o.RangeStart, o.RangeEnd)
	}
	return nil
}

// Result reports what an expansion did.
type Result struct {
	Sources   int // dates with a positive count at the filter slot
	Generated int // slots written into the buffer
	Skipped   int // slots left out because they could not be edited
}

type source struct {
	day   int
	count int
}

// Expand generates slots from the play counts found at opts.FilterSlot on
// each of dates and merges them into buffer, overwriting existing counts.
// The input buffer is never modified. When no date has a positive count the
// buffer is returned unchanged with ErrNothingToRepeat.
func Expand(buffer grid.Grid, dates []string, opts Options) (grid.Grid, Result, error) {
	generated, res, err := Generate(buffer, dates, opts)
	if err != nil || len(generated) == 0 {
		return buffer, res, err
	}
	return buffer.Merge(generated), res, nil
}

// Generate returns the slots Expand would merge into buffer, without
// merging them.
func Generate(buffer grid.Grid, dates []string, opts Options) ([]grid.Slot, Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, Result{}, err
	}

	var sources []source
	for i, d := range dates {
		if c := buffer.PlayCount(d, opts.FilterSlot); c > 0 {
			sources = append(sources, source{day: i, count: c})
		}
	}
	if len(sources) == 0 {
		return nil, Result{}, ErrNothingToRepeat
	}

	var generated []grid.Slot
	switch opts.Scope {
	case ScopeDay:
		generated = expandDay(dates, sources, opts)
	case ScopeWeek:
		generated = expandWeek(dates, sources, opts)
	}
	return generated, Result{Sources: len(sources), Generated: len(generated)}, nil
}

func expandDay(dates []string, sources []source, opts Options) []grid.Slot {
	var out []grid.Slot
	for _, src := range sources {
		for idx := opts.FilterSlot + opts.Step; idx <= grid.MaxSlotIndex; idx += opts.Step {
			out = append(out, grid.Slot{Date: dates[src.day], Index: idx, PlayCount: src.count})
		}
	}
	return out
}

// expandWeek fills [RangeStart, RangeEnd] on every date from the first
// source to the end of the week. The first source date starts after the
// filter slot. Dates without their own source use the first source's count.
func expandWeek(dates []string, sources []source, opts Options) []grid.Slot {
	if opts.RangeEnd < opts.RangeStart {
		return nil
	}

	own := make(map[int]int, len(sources))
	for _, s := range sources {
		own[s.day] = s.count
	}
	first := sources[0]

	var out []grid.Slot
	for day := first.day; day < len(dates); day++ {
		start := opts.RangeStart
		if day == first.day {
			start = max(opts.FilterSlot+opts.Step, opts.RangeStart)
		}
		count, ok := own[day]
		if !ok {
			count = first.count
		}
		for idx := start; idx <= opts.RangeEnd; idx += opts.Step {
			out = append(out, grid.Slot{Date: dates[day], Index: idx, PlayCount: count})
		}
	}
	return out
}

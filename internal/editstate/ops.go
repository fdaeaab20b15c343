package editstate

import (
	"time"

	"github.com/javiermolinar/spotgrid/internal/aggregate"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/repeat"
	"github.com/javiermolinar/spotgrid/internal/week"
)

// slotFilter reports whether a slot may be written. A nil filter allows
// every slot.
type slotFilter func(date string, index int) bool

func (f slotFilter) allows(date string, index int) bool {
	return f == nil || f(date, index)
}

// split separates the slots f allows from the ones it does not.
func (f slotFilter) split(slots []grid.Slot) (kept, dropped []grid.Slot) {
	if f == nil {
		return slots, nil
	}
	for _, sl := range slots {
		if f.allows(sl.Date, sl.Index) {
			kept = append(kept, sl)
		} else {
			dropped = append(dropped, sl)
		}
	}
	return kept, dropped
}

// Repeat expands the selected buffer with the repeat pattern for the week
// containing weekDate. repeat.ErrNothingToRepeat leaves the buffer as is.
func (s *Store) Repeat(opts repeat.Options, weekDate time.Time) (repeat.Result, error) {
	res, _, err := s.repeat(opts, weekDate, nil)
	return res, err
}

func (s *Store) repeat(opts repeat.Options, weekDate time.Time, allow slotFilter) (repeat.Result, []grid.Slot, error) {
	if s.selected == "" {
		return repeat.Result{}, nil, ErrNoSelection
	}
	generated, res, err := repeat.Generate(s.live, week.DateList(weekDate), opts)
	if err != nil {
		return res, nil, err
	}

	kept, dropped := allow.split(generated)
	res.Generated = len(kept)
	res.Skipped = len(dropped)
	if len(kept) == 0 {
		return res, dropped, nil
	}
	if err := s.edit(func(g grid.Grid) grid.Grid { return g.Merge(kept) }); err != nil {
		return repeat.Result{}, nil, err
	}
	return res, dropped, nil
}

// CopyWeek copies the selected buffer's slots of the week containing from
// onto the week containing to, replacing whatever that week had.
// It returns the number of slots copied.
func (s *Store) CopyWeek(from, to time.Time) (int, error) {
	n, _, err := s.copyWeek(from, to, nil)
	return n, err
}

// copyWeek replaces the target week's slots that allow accepts; the others
// stay as they are.
func (s *Store) copyWeek(from, to time.Time, allow slotFilter) (int, []grid.Slot, error) {
	if s.selected == "" {
		return 0, nil, ErrNoSelection
	}
	shift := daysBetween(week.Start(from), week.Start(to))
	if shift == 0 {
		return 0, nil, ErrSameWeek
	}
	src := s.live.InDates(week.DateList(from))
	if len(src) == 0 {
		return 0, nil, ErrNothingToCopy
	}

	copied, dropped := allow.split(src.ShiftDays(shift).InDates(week.DateList(to)))
	if len(copied) == 0 {
		return 0, dropped, nil
	}
	err := s.edit(func(g grid.Grid) grid.Grid {
		out := make(grid.Grid, 0, len(g)+len(copied))
		for _, slot := range g {
			if !week.Contains(to, slot.Date) || !allow.allows(slot.Date, slot.Index) {
				out = append(out, slot)
			}
		}
		return out.Merge(copied)
	})
	if err != nil {
		return 0, nil, err
	}
	return len(copied), dropped, nil
}

// CopyFromCampaign overlays another campaign's effective slots for the week
// containing weekDate onto the selected buffer. Matching slots take the
// source count. It returns the number of slots copied.
func (s *Store) CopyFromCampaign(sourceID string, weekDate time.Time) (int, error) {
	n, _, err := s.copyFromCampaign(sourceID, weekDate, nil)
	return n, err
}

func (s *Store) copyFromCampaign(sourceID string, weekDate time.Time, allow slotFilter) (int, []grid.Slot, error) {
	if s.selected == "" {
		return 0, nil, ErrNoSelection
	}
	if sourceID == s.selected {
		return 0, nil, ErrSameCampaign
	}
	srcGrid, err := s.EffectiveGrid(sourceID)
	if err != nil {
		return 0, nil, err
	}
	src := srcGrid.InDates(week.DateList(weekDate)).Prune()
	if len(src) == 0 {
		return 0, nil, ErrNothingToCopy
	}

	copied, dropped := allow.split(src)
	if len(copied) == 0 {
		return 0, dropped, nil
	}
	if err := s.edit(func(g grid.Grid) grid.Grid { return g.Merge(copied) }); err != nil {
		return 0, nil, err
	}
	return len(copied), dropped, nil
}

// Aggregate returns the summed grid of the week containing date, reading
// the current buffers.
func (s *Store) Aggregate(date time.Time) []grid.Slot {
	return aggregate.Aggregate(s.campaigns, s.Buffers(), date)
}

// Breakdown returns the contributions to one slot of the week containing date.
func (s *Store) Breakdown(date time.Time, slotDate string, slotIndex int) []aggregate.Contribution {
	return aggregate.Breakdown(s.campaigns, s.Buffers(), date, slotDate, slotIndex)
}

func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

package editstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/repeat"
	"github.com/javiermolinar/spotgrid/internal/week"
)

// Rejection reasons.
var (
	ErrSlotInPast           = errors.New("slot is in the past")
	ErrOutsideCampaignRange = errors.New("day is outside the campaign date range")
)

// DefaultWarningInterval is the minimum time between two warnings for the
// same reason.
const DefaultWarningInterval = 2 * time.Second

// RejectedEditError is returned when an edit breaks a temporal constraint.
// The buffer is left untouched.
type RejectedEditError struct {
	Reason    error
	Date      string
	SlotIndex int
}

func (e *RejectedEditError) Error() string {
	return fmt.Sprintf("edit rejected at %s %s: %v", e.Date, grid.SlotTime(e.SlotIndex), e.Reason)
}

func (e *RejectedEditError) Unwrap() error {
	return e.Reason
}

// Guard wraps a Store with the checks a user-facing edit must pass: the day
// must be inside the selected campaign's date range and the slot must not
// have started yet. Rejections are returned and, rate-limited per reason,
// passed to Notify.
type Guard struct {
	Store    *Store
	Now      func() time.Time
	Notify   func(error)
	Interval time.Duration

	lastWarn map[error]time.Time
}

// NewGuard creates a guard using the wall clock and the default interval.
func NewGuard(store *Store, notify func(error)) *Guard {
	return &Guard{
		Store:    store,
		Now:      time.Now,
		Notify:   notify,
		Interval: DefaultWarningInterval,
	}
}

func (g *Guard) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Check returns a *RejectedEditError when date/index cannot be edited for
// the selected campaign.
func (g *Guard) Check(date string, index int) error {
	c := g.Store.Selected()
	if c == nil {
		return ErrNoSelection
	}
	if err := checkSlot(date, index); err != nil {
		return err
	}
	if reason := rejectReason(c, date, index, g.now()); reason != nil {
		return g.reject(reason, date, index)
	}
	return nil
}

// rejectReason returns why c may not be edited at date/index, or nil.
func rejectReason(c *campaign.Campaign, date string, index int, now time.Time) error {
	if !week.DateInRange(c, date) {
		return ErrOutsideCampaignRange
	}
	if week.IsDateSlotInPast(date, index, now) {
		return ErrSlotInPast
	}
	return nil
}

func editableAt(c *campaign.Campaign, now time.Time) slotFilter {
	return func(date string, index int) bool {
		return rejectReason(c, date, index, now) == nil
	}
}

// rejectDropped reports dropped slots once per reason and returns the
// first rejection.
func (g *Guard) rejectDropped(c *campaign.Campaign, dropped []grid.Slot, now time.Time) error {
	var first error
	seen := make(map[error]bool)
	for _, sl := range dropped {
		reason := rejectReason(c, sl.Date, sl.Index, now)
		if reason == nil || seen[reason] {
			continue
		}
		seen[reason] = true
		if err := g.reject(reason, sl.Date, sl.Index); first == nil {
			first = err
		}
	}
	return first
}

func (g *Guard) reject(reason error, date string, index int) error {
	err := &RejectedEditError{Reason: reason, Date: date, SlotIndex: index}
	g.warn(reason, err)
	g.Store.logger.Warn().Err(reason).Str("date", date).Int("slot", index).Msg("edit rejected")
	return err
}

func (g *Guard) warn(reason, err error) {
	if g.Notify == nil {
		return
	}
	interval := g.Interval
	if interval <= 0 {
		interval = DefaultWarningInterval
	}
	now := g.now()
	if last, ok := g.lastWarn[reason]; ok && now.Sub(last) < interval {
		return
	}
	if g.lastWarn == nil {
		g.lastWarn = make(map[error]time.Time)
	}
	g.lastWarn[reason] = now
	g.Notify(err)
}

// UpdateSlot sets the play count at date/index when the slot is editable.
func (g *Guard) UpdateSlot(date string, index, count int) error {
	if err := g.Check(date, index); err != nil {
		return err
	}
	return g.Store.UpdateSlot(date, index, count)
}

// Increment adds one play when the slot is editable.
func (g *Guard) Increment(date string, index int) error {
	if err := g.Check(date, index); err != nil {
		return err
	}
	return g.Store.Increment(date, index)
}

// Decrement removes one play when the slot is editable.
func (g *Guard) Decrement(date string, index int) error {
	if err := g.Check(date, index); err != nil {
		return err
	}
	return g.Store.Decrement(date, index)
}

// Repeat runs the repeat pattern when the selected campaign runs during the
// week containing weekDate. Generated slots outside the campaign dates or
// already started are left out and reported as rejected. The rejection is
// returned only when nothing could be written.
func (g *Guard) Repeat(opts repeat.Options, weekDate time.Time) (repeat.Result, error) {
	c := g.Store.Selected()
	if c == nil {
		return repeat.Result{}, ErrNoSelection
	}
	if !week.CampaignActiveInWeek(c, week.Start(weekDate), week.End(weekDate)) {
		return repeat.Result{}, g.reject(ErrOutsideCampaignRange, week.Dates(weekDate)[0], opts.FilterSlot)
	}

	now := g.now()
	res, dropped, err := g.Store.repeat(opts, weekDate, editableAt(c, now))
	if err != nil {
		return res, err
	}
	if rejected := g.rejectDropped(c, dropped, now); rejected != nil && res.Generated == 0 {
		return res, rejected
	}
	return res, nil
}

// CopyResult counts the slots a guarded copy wrote and left out.
type CopyResult struct {
	Copied  int
	Skipped int
}

// CopyWeek is Store.CopyWeek limited to editable slots. Target slots that
// cannot be edited keep their counts; copied slots landing on them are
// left out and reported as rejected.
func (g *Guard) CopyWeek(from, to time.Time) (CopyResult, error) {
	c := g.Store.Selected()
	if c == nil {
		return CopyResult{}, ErrNoSelection
	}
	now := g.now()
	n, dropped, err := g.Store.copyWeek(from, to, editableAt(c, now))
	if err != nil {
		return CopyResult{}, err
	}
	res := CopyResult{Copied: n, Skipped: len(dropped)}
	if rejected := g.rejectDropped(c, dropped, now); rejected != nil && n == 0 {
		return res, rejected
	}
	return res, nil
}

// CopyFromCampaign is Store.CopyFromCampaign limited to editable slots.
func (g *Guard) CopyFromCampaign(sourceID string, weekDate time.Time) (CopyResult, error) {
	c := g.Store.Selected()
	if c == nil {
		return CopyResult{}, ErrNoSelection
	}
	now := g.now()
	n, dropped, err := g.Store.copyFromCampaign(sourceID, weekDate, editableAt(c, now))
	if err != nil {
		return CopyResult{}, err
	}
	res := CopyResult{Copied: n, Skipped: len(dropped)}
	if rejected := g.rejectDropped(c, dropped, now); rejected != nil && n == 0 {
		return res, rejected
	}
	return res, nil
}

package week

import (
	"time"

	"github.com/javiermolinar/spotgrid/internal/dateutil"
)

// Window tracks the displayed calendar week for navigation.
// It keeps the previous, current and next week starts so views can
// prefetch neighbours without recomputing boundaries.
type Window struct {
	weeks [3]time.Time // [0]=prev, [1]=current, [2]=next
}

// NewWindow creates a window centred on the week containing date.
func NewWindow(date time.Time) *Window {
	w := &Window{}
	w.center(Start(date))
	return w
}

func (w *Window) center(start time.Time) {
	w.weeks = [3]time.Time{start.AddDate(0, 0, -7), start, start.AddDate(0, 0, 7)}
}

// Current returns the Sunday of the displayed week.
func (w *Window) Current() time.Time {
	return w.weeks[1]
}

// Previous returns the Sunday of the week before the displayed one.
func (w *Window) Previous() time.Time {
	return w.weeks[0]
}

// Next returns the Sunday of the week after the displayed one.
func (w *Window) Next() time.Time {
	return w.weeks[2]
}

// ShiftForward moves the displayed week forward by one week.
func (w *Window) ShiftForward() {
	w.weeks[0] = w.weeks[1]
	w.weeks[1] = w.weeks[2]
	w.weeks[2] = w.weeks[1].AddDate(0, 0, 7)
}

// ShiftBackward moves the displayed week back by one week.
func (w *Window) ShiftBackward() {
	w.weeks[2] = w.weeks[1]
	w.weeks[1] = w.weeks[0]
	w.weeks[0] = w.weeks[1].AddDate(0, 0, -7)
}

// Shift moves the displayed week by n weeks (negative moves back).
func (w *Window) Shift(n int) {
	w.center(w.weeks[1].AddDate(0, 0, 7*n))
}

// Today recentres the window on the week containing now.
func (w *Window) Today(now time.Time) {
	w.center(Start(now))
}

// Label formats the displayed week as "Sun Jun 2 - Sat Jun 8, 2024".
func (w *Window) Label() string {
	start := w.Current()
	end := dateutil.TruncateToDay(End(start))
	return start.Format("Mon Jan 2") + " - " + end.Format("Mon Jan 2, 2006")
}

package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/dateutil"
	"github.com/javiermolinar/spotgrid/internal/editstate"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

var errInvalidContent = errors.New("content must be id[:title[:seconds]]")

// parseDay resolves a day argument ("today", "monday", "2024-06-12") to
// its YYYY-MM-DD form.
func parseDay(s string, now time.Time) (time.Time, string, error) {
	d, err := dateutil.ParseRelativeDate(s, now)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%q: %w", s, err)
	}
	return d, dateutil.FormatDate(d), nil
}

// parseSlot accepts a slot index ("20") or a start time ("10:00").
func parseSlot(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		idx, err := strconv.Atoi(s)
		if err != nil || !grid.ValidIndex(idx) {
			return 0, fmt.Errorf("%w: %q", grid.ErrInvalidSlot, s)
		}
		return idx, nil
	}
	if len(s) == 4 {
		s = "0" + s
	}
	return grid.ParseSlotTime(s)
}

// parseContent parses id[:title[:seconds]].
func parseContent(s string) (campaign.ContentRef, error) {
	parts := strings.SplitN(s, ":", 3)
	ref := campaign.ContentRef{ContentID: strings.TrimSpace(parts[0])}
	if ref.ContentID == "" {
		return ref, fmt.Errorf("%w: %q", errInvalidContent, s)
	}
	if len(parts) > 1 {
		ref.Title = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		secs, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || secs < 0 {
			return ref, fmt.Errorf("%w: %q", errInvalidContent, s)
		}
		ref.DurationSeconds = secs
	}
	return ref, nil
}

func slotLabel(index int) string {
	if !grid.ValidIndex(index) {
		return "invalid"
	}
	return grid.SlotTime(index)
}

// formatDuration renders seconds as "1h05m", "4m30s" or "45s".
func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func formatStatus(s campaign.Status) string {
	switch s {
	case campaign.StatusActive:
		return formatOK(string(s))
	case campaign.StatusPaused:
		return formatWarn(string(s))
	case campaign.StatusDeleted:
		return formatError(string(s))
	default:
		return formatMuted(string(s))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// printSaveResults prints one line per saved campaign and returns an error
// when any of them failed.
func printSaveResults(w io.Writer, store *editstate.Store, results []editstate.SaveResult) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, formatMuted("No changes to save."))
		return nil
	}

	failed := 0
	for _, r := range results {
		name := r.CampaignID
		if c, err := store.Campaign(r.CampaignID); err == nil {
			name = c.DisplayName()
		}
		if r.OK() {
			_, _ = fmt.Fprintf(w, "%s %s\n", formatOK("saved"), name)
			continue
		}
		failed++
		_, _ = fmt.Fprintf(w, "%s %s: %v\n", formatError("failed"), name, r.Err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d campaigns failed to save", failed, len(results))
	}
	return nil
}

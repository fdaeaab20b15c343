// Package aggregate combines every eligible campaign's slot grid into the
// shared weekly view.
package aggregate

import (
	"slices"
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/week"
)

// BufferSource supplies unsaved edit buffers. A campaign without a buffer
// contributes its persisted grid.
type BufferSource interface {
	Buffer(campaignID string) (grid.Grid, bool)
}

// Buffers is the edit-session view used for aggregation: the live buffer of
// the selected campaign plus pending buffers of the others.
type Buffers struct {
	SelectedID string
	Live       grid.Grid
	Pending    map[string]grid.Grid
}

// Buffer returns the live buffer for the selected campaign, else its
// pending buffer.
func (b Buffers) Buffer(campaignID string) (grid.Grid, bool) {
	if campaignID != "" && campaignID == b.SelectedID && b.Live != nil {
		return b.Live, true
	}
	g, ok := b.Pending[campaignID]
	return g, ok
}

// NoBuffers aggregates persisted grids only.
var NoBuffers BufferSource = Buffers{}

// EffectiveGrid returns the buffer for c when one exists, else its persisted grid.
func EffectiveGrid(c *campaign.Campaign, buffers BufferSource) grid.Grid {
	if buffers != nil {
		if g, ok := buffers.Buffer(c.ID); ok {
			return g
		}
	}
	return c.ScheduleGrid
}

// Eligible returns the campaigns that contribute to the week containing
// displayed: active and overlapping the week. Input order is preserved.
func Eligible(campaigns []*campaign.Campaign, displayed time.Time) []*campaign.Campaign {
	start, end := week.Start(displayed), week.End(displayed)
	out := make([]*campaign.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c == nil || !c.IsActive() {
			continue
		}
		if !week.CampaignActiveInWeek(c, start, end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Aggregate sums the effective grids of all eligible campaigns for the week
// containing displayed. Only slots with a positive total are returned,
// ordered by date and slot index.
func Aggregate(campaigns []*campaign.Campaign, buffers BufferSource, displayed time.Time) []grid.Slot {
	dates := week.Dates(displayed)
	inWeek := make(map[string]bool, len(dates))
	for _, d := range dates {
		inWeek[d] = true
	}

	sums := make(map[grid.SlotKey]int)
	for _, c := range Eligible(campaigns, displayed) {
		for _, s := range EffectiveGrid(c, buffers) {
			if !inWeek[s.Date] {
				continue
			}
			sums[s.Key()] += s.PlayCount
		}
	}

	out := make([]grid.Slot, 0, len(sums))
	for k, v := range sums {
		if v <= 0 {
			continue
		}
		out = append(out, grid.Slot{Date: k.Date, Index: k.Index, PlayCount: v})
	}
	slices.SortFunc(out, grid.CompareSlots)
	return out
}

// Contribution is one campaign's share of an aggregated slot.
type Contribution struct {
	CampaignID   string
	CampaignName string
	PlayCount    int
	Priority     int
}

// Breakdown lists the campaigns contributing to slotDate/slotIndex in the
// week containing displayed, highest priority first. Campaigns with equal
// priority keep their input order.
func Breakdown(campaigns []*campaign.Campaign, buffers BufferSource, displayed time.Time, slotDate string, slotIndex int) []Contribution {
	if !week.Contains(displayed, slotDate) {
		return nil
	}

	var out []Contribution
	for _, c := range Eligible(campaigns, displayed) {
		count := EffectiveGrid(c, buffers).PlayCount(slotDate, slotIndex)
		if count <= 0 {
			continue
		}
		out = append(out, Contribution{
			CampaignID:   c.ID,
			CampaignName: c.DisplayName(),
			PlayCount:    count,
			Priority:     c.Priority,
		})
	}

	slices.SortStableFunc(out, func(a, b Contribution) int {
		return b.Priority - a.Priority
	})
	return out
}

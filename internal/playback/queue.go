// Package playback builds the ordered content queue for a broadcast slot
// and drives its sequential preview playback.
package playback

import (
	"slices"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// Scheduled returns the active campaigns with plays at date/index,
// highest priority first. Equal priorities keep their input order.
func Scheduled(campaigns []*campaign.Campaign, date string, index int) []*campaign.Campaign {
	var out []*campaign.Campaign
	for _, c := range campaigns {
		if c == nil || !c.IsActive() {
			continue
		}
		if grid.PlayCount(c.ScheduleGrid, date, index) > 0 {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b *campaign.Campaign) int {
		return b.Priority - a.Priority
	})
	return out
}

// BuildQueue returns the content ids to play at date/index. Each scheduled
// campaign contributes its full content list once per play.
func BuildQueue(campaigns []*campaign.Campaign, date string, index int) []string {
	var queue []string
	for _, c := range Scheduled(campaigns, date, index) {
		plays := grid.PlayCount(c.ScheduleGrid, date, index)
		for range plays {
			for _, ref := range c.ContentRefs {
				queue = append(queue, ref.ContentID)
			}
		}
	}
	return queue
}

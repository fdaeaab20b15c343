package playback

import (
	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// SlotPreview is the playback queue of one slot.
type SlotPreview struct {
	Index int
	Time  string
	Queue []string
}

// DailyPreview returns every slot of date that has something to play.
func DailyPreview(campaigns []*campaign.Campaign, date string) []SlotPreview {
	var out []SlotPreview
	for idx := range grid.SlotsPerDay {
		q := BuildQueue(campaigns, date, idx)
		if len(q) == 0 {
			continue
		}
		out = append(out, SlotPreview{Index: idx, Time: grid.SlotTime(idx), Queue: q})
	}
	return out
}

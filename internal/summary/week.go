// Package summary provides the aggregated week read model.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/spotgrid/internal/aggregate"
	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/week"
)

// CampaignStats is one campaign's share of the week.
type CampaignStats struct {
	ID             string
	Name           string
	Priority       int
	Plays          int
	AirtimeSeconds int // plays times the length of the content list
}

// WeekSummary holds aggregated week data.
type WeekSummary struct {
	Start      time.Time
	End        time.Time
	Dates      [grid.DaysPerWeek]string
	Slots      []grid.Slot
	DayTotals  [grid.DaysPerWeek]int
	TotalPlays int
	Peak       grid.Slot
	HasPeak    bool
	Campaigns  []CampaignStats // eligible campaigns, input order
}

// SummarizeWeek builds the summary of the week containing date from
// campaigns and any unsaved buffers.
func SummarizeWeek(campaigns []*campaign.Campaign, buffers aggregate.BufferSource, date time.Time) *WeekSummary {
	dates := week.Dates(date)
	slots := aggregate.Aggregate(campaigns, buffers, date)

	s := &WeekSummary{
		Start:     week.Start(date),
		End:       week.End(date),
		Dates:     dates,
		Slots:     slots,
		DayTotals: aggregate.DayTotals(slots, dates),
	}
	for _, sl := range slots {
		s.TotalPlays += sl.PlayCount
	}
	s.Peak, s.HasPeak = aggregate.Peak(slots)

	for _, c := range aggregate.Eligible(campaigns, date) {
		plays := aggregate.EffectiveGrid(c, buffers).InDates(dates[:]).Total()
		s.Campaigns = append(s.Campaigns, CampaignStats{
			ID:             c.ID,
			Name:           c.DisplayName(),
			Priority:       c.Priority,
			Plays:          plays,
			AirtimeSeconds: plays * c.TotalDurationSeconds(),
		})
	}
	return s
}

// BuildWeekSummary loads the active campaigns and summarizes the week
// containing date. A zero date means the current week.
func BuildWeekSummary(ctx context.Context, repo campaign.Repository, date time.Time) (*WeekSummary, error) {
	if date.IsZero() {
		date = time.Now()
	}

	active := campaign.StatusActive
	campaigns, err := repo.ListCampaigns(ctx, &active)
	if err != nil {
		return nil, fmt.Errorf("fetching campaigns: %w", err)
	}

	return SummarizeWeek(campaigns, aggregate.NoBuffers, date), nil
}

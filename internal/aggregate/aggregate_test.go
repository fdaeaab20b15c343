package aggregate

import (
	"testing"
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
	"github.com/javiermolinar/spotgrid/internal/week"
)

func day(s string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", s, time.Local)
	return t
}

func newCampaign(id string, status campaign.Status, priority int, g grid.Grid) *campaign.Campaign {
	return &campaign.Campaign{
		ID:           id,
		Name:         id,
		Status:       status,
		Priority:     priority,
		StartDate:    day("2024-06-01"),
		EndDate:      day("2024-06-30"),
		ScheduleGrid: g,
	}
}

func TestAggregateSumsActiveCampaigns(t *testing.T) {
	a := newCampaign("A", campaign.StatusActive, 9, grid.Grid{{Date: "2024-06-03", Index: 16, PlayCount: 2}})
	b := newCampaign("B", campaign.StatusActive, 5, grid.Grid{{Date: "2024-06-03", Index: 16, PlayCount: 3}})
	c := newCampaign("C", campaign.StatusPaused, 7, grid.Grid{{Date: "2024-06-03", Index: 16, PlayCount: 10}})

	displayed := day("2024-06-05")
	got := Aggregate([]*campaign.Campaign{b, c, a}, NoBuffers, displayed)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1: %v", len(got), got)
	}
	if got[0].PlayCount != 5 {
		t.Errorf("PlayCount = %d, want 5", got[0].PlayCount)
	}

	bd := Breakdown([]*campaign.Campaign{b, c, a}, NoBuffers, displayed, "2024-06-03", 16)
	if len(bd) != 2 {
		t.Fatalf("breakdown len = %d, want 2: %v", len(bd), bd)
	}
	if bd[0].CampaignID != "A" || bd[1].CampaignID != "B" {
		t.Errorf("breakdown order = [%s %s], want [A B]", bd[0].CampaignID, bd[1].CampaignID)
	}
	if bd[0].PlayCount != 2 || bd[1].PlayCount != 3 {
		t.Errorf("breakdown counts = [%d %d], want [2 3]", bd[0].PlayCount, bd[1].PlayCount)
	}
}

func TestAggregateExcludesOtherWeeks(t *testing.T) {
	a := newCampaign("A", campaign.StatusActive, 5, grid.Grid{
		{Date: "2024-06-01", Index: 0, PlayCount: 1}, // previous Saturday
		{Date: "2024-06-02", Index: 0, PlayCount: 2},
		{Date: "2024-06-08", Index: 47, PlayCount: 3},
		{Date: "2024-06-09", Index: 0, PlayCount: 4}, // next Sunday
	})

	got := Aggregate([]*campaign.Campaign{a}, NoBuffers, day("2024-06-03"))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if got[0].Date != "2024-06-02" || got[1].Date != "2024-06-08" {
		t.Errorf("dates = %s,%s", got[0].Date, got[1].Date)
	}
}

func TestAggregateSkipsCampaignOutsideWeek(t *testing.T) {
	a := newCampaign("A", campaign.StatusActive, 5, grid.Grid{{Date: "2024-06-03", Index: 1, PlayCount: 1}})
	a.StartDate = day("2024-06-10")
	a.EndDate = day("2024-06-20")

	if got := Aggregate([]*campaign.Campaign{a}, NoBuffers, day("2024-06-03")); len(got) != 0 {
		t.Errorf("expected no slots, got %v", got)
	}
}

func TestAggregateUsesBuffers(t *testing.T) {
	a := newCampaign("A", campaign.StatusActive, 5, grid.Grid{{Date: "2024-06-03", Index: 1, PlayCount: 1}})
	b := newCampaign("B", campaign.StatusActive, 5, grid.Grid{{Date: "2024-06-03", Index: 1, PlayCount: 1}})
	c := newCampaign("C", campaign.StatusActive, 5, grid.Grid{{Date: "2024-06-03", Index: 1, PlayCount: 1}})

	bufs := Buffers{
		SelectedID: "A",
		Live:       grid.Grid{{Date: "2024-06-03", Index: 1, PlayCount: 4}},
		Pending: map[string]grid.Grid{
			"A": {{Date: "2024-06-03", Index: 1, PlayCount: 100}}, // shadowed by Live
			"B": {{Date: "2024-06-03", Index: 2, PlayCount: 2}},
		},
	}

	got := Aggregate([]*campaign.Campaign{a, b, c}, bufs, day("2024-06-03"))
	want := []grid.Slot{
		{Date: "2024-06-03", Index: 1, PlayCount: 5},
		{Date: "2024-06-03", Index: 2, PlayCount: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAggregateEqualsBreakdownSum(t *testing.T) {
	dates := week.Dates(day("2024-06-03"))
	campaigns := []*campaign.Campaign{
		newCampaign("A", campaign.StatusActive, 3, grid.Grid{
			{Date: dates[1], Index: 10, PlayCount: 2},
			{Date: dates[2], Index: 20, PlayCount: 1},
		}),
		newCampaign("B", campaign.StatusActive, 8, grid.Grid{
			{Date: dates[1], Index: 10, PlayCount: 5},
		}),
		newCampaign("C", campaign.StatusActive, 3, nil),
	}
	bufs := Buffers{
		SelectedID: "C",
		Live:       grid.Grid{{Date: dates[2], Index: 20, PlayCount: 6}},
	}

	for _, s := range Aggregate(campaigns, bufs, day("2024-06-03")) {
		sum := 0
		for _, c := range Breakdown(campaigns, bufs, day("2024-06-03"), s.Date, s.Index) {
			sum += c.PlayCount
		}
		if sum != s.PlayCount {
			t.Errorf("%s/%d: breakdown sum %d != aggregate %d", s.Date, s.Index, sum, s.PlayCount)
		}
	}
}

func TestBreakdownStableOnEqualPriority(t *testing.T) {
	slot := grid.Grid{{Date: "2024-06-03", Index: 0, PlayCount: 1}}
	campaigns := []*campaign.Campaign{
		newCampaign("first", campaign.StatusActive, 5, slot),
		newCampaign("second", campaign.StatusActive, 5, slot),
		newCampaign("top", campaign.StatusActive, 9, slot),
		newCampaign("third", campaign.StatusActive, 5, slot),
	}

	got := Breakdown(campaigns, NoBuffers, day("2024-06-03"), "2024-06-03", 0)
	want := []string{"top", "first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].CampaignID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].CampaignID, id)
		}
	}
}

func TestBreakdownOutsideWeek(t *testing.T) {
	a := newCampaign("A", campaign.StatusActive, 5, grid.Grid{{Date: "2024-06-10", Index: 0, PlayCount: 1}})
	if got := Breakdown([]*campaign.Campaign{a}, NoBuffers, day("2024-06-03"), "2024-06-10", 0); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestDayTotalsAndPeak(t *testing.T) {
	dates := week.Dates(day("2024-06-03"))
	slots := []grid.Slot{
		{Date: dates[0], Index: 3, PlayCount: 2},
		{Date: dates[0], Index: 4, PlayCount: 5},
		{Date: dates[3], Index: 1, PlayCount: 5},
	}

	totals := DayTotals(slots, dates)
	if totals[0] != 7 || totals[3] != 5 || totals[1] != 0 {
		t.Errorf("totals = %v", totals)
	}

	peak, ok := Peak(slots)
	if !ok {
		t.Fatal("expected a peak")
	}
	if peak.Date != dates[0] || peak.Index != 4 {
		t.Errorf("peak = %v, want %s/4", peak, dates[0])
	}

	if _, ok := Peak(nil); ok {
		t.Error("expected no peak for empty input")
	}

	m := Matrix(slots, dates)
	if m[0][4] != 5 || m[3][1] != 5 || m[6][0] != 0 {
		t.Errorf("matrix cells wrong: %v %v", m[0][4], m[3][1])
	}
}

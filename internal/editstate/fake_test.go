package editstate

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// fakeRepo is an in-memory campaign.Repository.
type fakeRepo struct {
	order     []string
	campaigns map[string]*campaign.Campaign
	gridErr   map[string]error // UpdateCampaignGrid failures by id
	gridCalls []string
	nextID    int
}

func newFakeRepo(cs ...*campaign.Campaign) *fakeRepo {
	r := &fakeRepo{campaigns: make(map[string]*campaign.Campaign), gridErr: make(map[string]error)}
	for _, c := range cs {
		r.order = append(r.order, c.ID)
		r.campaigns[c.ID] = c.Clone()
	}
	return r
}

func (r *fakeRepo) ListCampaigns(_ context.Context, status *campaign.Status) ([]*campaign.Campaign, error) {
	var out []*campaign.Campaign
	for _, id := range r.order {
		c, ok := r.campaigns[id]
		if !ok {
			continue
		}
		if status == nil && c.Status == campaign.StatusDeleted {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, c.Clone())
	}
	return out, nil
}

func (r *fakeRepo) GetCampaign(_ context.Context, id string) (*campaign.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, campaign.ErrCampaignNotFound
	}
	return c.Clone(), nil
}

func (r *fakeRepo) CreateCampaign(_ context.Context, c *campaign.Campaign) error {
	r.nextID++
	c.ID = fmt.Sprintf("new-%d", r.nextID)
	r.order = append(r.order, c.ID)
	r.campaigns[c.ID] = c.Clone()
	return nil
}

func (r *fakeRepo) UpdateCampaign(_ context.Context, c *campaign.Campaign) (*campaign.Campaign, error) {
	old, ok := r.campaigns[c.ID]
	if !ok {
		return nil, campaign.ErrCampaignNotFound
	}
	next := c.Clone()
	next.ScheduleGrid = old.ScheduleGrid.Clone()
	r.campaigns[c.ID] = next
	return next.Clone(), nil
}

func (r *fakeRepo) DeleteCampaign(_ context.Context, id string, hard bool) error {
	c, ok := r.campaigns[id]
	if !ok {
		return campaign.ErrCampaignNotFound
	}
	if hard {
		delete(r.campaigns, id)
		return nil
	}
	c.Status = campaign.StatusDeleted
	return nil
}

func (r *fakeRepo) ToggleCampaignStatus(_ context.Context, id string) (*campaign.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, campaign.ErrCampaignNotFound
	}
	next, err := c.NextToggleStatus()
	if err != nil {
		return nil, err
	}
	c.Status = next
	return c.Clone(), nil
}

func (r *fakeRepo) CloneCampaign(_ context.Context, id string) (*campaign.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, campaign.ErrCampaignNotFound
	}
	cp := c.Clone()
	cp.Name += " (copy)"
	cp.Status = campaign.StatusDraft
	if err := r.CreateCampaign(context.Background(), cp); err != nil {
		return nil, err
	}
	return cp.Clone(), nil
}

func (r *fakeRepo) UpdateCampaignGrid(_ context.Context, id string, g grid.Grid) (*campaign.Campaign, error) {
	r.gridCalls = append(r.gridCalls, id)
	if err := r.gridErr[id]; err != nil {
		return nil, err
	}
	c, ok := r.campaigns[id]
	if !ok {
		return nil, campaign.ErrCampaignNotFound
	}
	c.ScheduleGrid = g.Clone()
	return c.Clone(), nil
}

func (r *fakeRepo) Close() error { return nil }

func day(s string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", s, time.Local)
	return t
}

func testCampaign(id string, priority int, g grid.Grid) *campaign.Campaign {
	return &campaign.Campaign{
		ID:           id,
		Name:         "Campaign " + id,
		Status:       campaign.StatusActive,
		Priority:     priority,
		StartDate:    day("2024-06-01"),
		EndDate:      day("2024-06-30"),
		ScheduleGrid: g,
	}
}

package editstate

import (
	"context"
	"fmt"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// Create stores a new campaign and adds it to the session.
func (s *Store) Create(ctx context.Context, c *campaign.Campaign) error {
	if err := s.repo.CreateCampaign(ctx, c); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	s.campaigns = append(s.campaigns, c)
	s.logger.Info().Str("campaign", c.ID).Str("name", c.Name).Msg("campaign created")
	return nil
}

// Update saves campaign fields. Schedule buffers are left alone.
func (s *Store) Update(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, error) {
	updated, err := s.repo.UpdateCampaign(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	s.replace(updated)
	return updated, nil
}

// Clone copies a campaign into a new draft and adds it to the session.
func (s *Store) Clone(ctx context.Context, id string) (*campaign.Campaign, error) {
	cloned, err := s.repo.CloneCampaign(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("clone campaign: %w", err)
	}
	s.replace(cloned)
	s.logger.Info().Str("campaign", id).Str("clone", cloned.ID).Msg("campaign cloned")
	return cloned, nil
}

// ToggleStatus pauses an active campaign or activates a paused or draft one.
// Pausing first clears the campaign's future slots; that step is best
// effort and never blocks the toggle.
func (s *Store) ToggleStatus(ctx context.Context, id string) (*campaign.Campaign, error) {
	c, err := s.Campaign(id)
	if err != nil {
		return nil, err
	}
	if _, err := c.NextToggleStatus(); err != nil {
		return nil, err
	}

	if c.Status == campaign.StatusActive {
		s.clearFutureSlots(ctx, c)
	}

	updated, err := s.repo.ToggleCampaignStatus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle campaign: %w", err)
	}
	s.replace(updated)
	s.logger.Info().Str("campaign", id).Str("status", string(updated.Status)).Msg("campaign toggled")
	return updated, nil
}

// Delete removes a campaign after clearing its future slots best effort.
// The campaign and its buffers leave the session.
func (s *Store) Delete(ctx context.Context, id string, hard bool) error {
	c, err := s.Campaign(id)
	if err != nil {
		return err
	}

	s.clearFutureSlots(ctx, c)

	if err := s.repo.DeleteCampaign(ctx, id, hard); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}

	if s.selected == id {
		s.selected = ""
		s.live = nil
	}
	delete(s.pending, id)
	if i := s.index(id); i >= 0 {
		s.campaigns = append(s.campaigns[:i], s.campaigns[i+1:]...)
	}
	s.logger.Info().Str("campaign", id).Bool("hard", hard).Msg("campaign deleted")
	return nil
}

// clearFutureSlots keeps only the slots that already started and drops any
// unsaved buffer for c. Failures are logged and ignored.
func (s *Store) clearFutureSlots(ctx context.Context, c *campaign.Campaign) {
	if s.selected == c.ID {
		s.live = c.ScheduleGrid.Clone()
	}
	delete(s.pending, c.ID)

	kept := grid.FilterPastSlots(c.ScheduleGrid, s.Now())
	if len(kept) == len(c.ScheduleGrid) {
		return
	}

	updated, err := s.repo.UpdateCampaignGrid(ctx, c.ID, kept)
	if err != nil {
		s.logger.Warn().Err(err).Str("campaign", c.ID).Msg("failed to clear future slots, continuing")
		return
	}
	s.replace(updated)
	if s.selected == c.ID {
		s.live = updated.ScheduleGrid.Clone()
	}
}

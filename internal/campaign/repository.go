package campaign

import (
	"context"

	"github.com/javiermolinar/spotgrid/internal/grid"
)

// Repository is the backend boundary for campaigns.
// Grids are always replaced whole; there is no diff or patch form.
type Repository interface {
	// ListCampaigns returns campaigns in a stable order. A nil status lists
	// every campaign that is not deleted.
	ListCampaigns(ctx context.Context, status *Status) ([]*Campaign, error)

	// GetCampaign retrieves a campaign by ID.
	// Returns ErrCampaignNotFound if it does not exist.
	GetCampaign(ctx context.Context, id string) (*Campaign, error)

	// CreateCampaign stores a new campaign and assigns its ID.
	CreateCampaign(ctx context.Context, c *Campaign) error

	// UpdateCampaign updates the campaign fields and content list, leaving the grid untouched.
	UpdateCampaign(ctx context.Context, c *Campaign) (*Campaign, error)

	// DeleteCampaign soft-deletes (status deleted) or, when hard is set, removes the campaign.
	DeleteCampaign(ctx context.Context, id string, hard bool) error

	// ToggleCampaignStatus flips active <-> paused (draft activates).
	ToggleCampaignStatus(ctx context.Context, id string) (*Campaign, error)

	// CloneCampaign copies a campaign into a new draft.
	CloneCampaign(ctx context.Context, id string) (*Campaign, error)

	// UpdateCampaignGrid replaces the campaign's schedule grid and returns
	// the campaign as persisted.
	UpdateCampaignGrid(ctx context.Context, id string, g grid.Grid) (*Campaign, error)

	// Close releases any resources held by the repository.
	Close() error
}

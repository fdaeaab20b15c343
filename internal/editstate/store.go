// Package editstate owns the multi-campaign edit session: the selected
// campaign's live buffer, pending buffers for the others, saving and the
// campaign lifecycle actions that touch schedules.
//
// A Store is not safe for concurrent use. It is meant to be driven from a
// single goroutine, the way a UI event loop drives it.
package editstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/spotgrid/internal/aggregate"
	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/dateutil"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// Store errors.
var (
	ErrNoSelection   = errors.New("no campaign selected")
	ErrInvalidCount  = errors.New("play count cannot be negative")
	ErrSameCampaign  = errors.New("source and target campaign are the same")
	ErrSameWeek      = errors.New("source and target week are the same")
	ErrNothingToCopy = errors.New("nothing to copy")
)

// SaveResult is the outcome of saving one campaign.
type SaveResult struct {
	CampaignID string
	Err        error
}

// OK reports whether the save succeeded.
func (r SaveResult) OK() bool { return r.Err == nil }

// Store holds the edit session.
//
// Grids are immutable values: every edit produces a new grid, so buffers
// can share them freely. Whether a campaign is dirty is
// derived by comparing its buffer with its persisted grid.
type Store struct {
	repo   campaign.Repository
	logger zerolog.Logger

	// Now is the clock used for best-effort schedule clearing.
	Now func() time.Time

	campaigns []*campaign.Campaign // persisted, list order preserved

	selected string
	live     grid.Grid            // nil when nothing is selected
	pending  map[string]grid.Grid // buffers by campaign id, mirrors live for the selected one
}

// NewStore creates an empty session backed by repo.
func NewStore(repo campaign.Repository, logger zerolog.Logger) *Store {
	return &Store{
		repo:    repo,
		logger:  logger.With().Str("component", "editstate").Logger(),
		Now:     time.Now,
		pending: make(map[string]grid.Grid),
	}
}

// Load replaces the cached campaigns with the repository listing.
// Buffers of campaigns still listed are kept; the others are dropped.
func (s *Store) Load(ctx context.Context, status *campaign.Status) error {
	list, err := s.repo.ListCampaigns(ctx, status)
	if err != nil {
		return fmt.Errorf("load campaigns: %w", err)
	}
	s.campaigns = list

	for id := range s.pending {
		if s.index(id) < 0 {
			delete(s.pending, id)
		}
	}
	if s.selected != "" && s.index(s.selected) < 0 {
		s.selected = ""
		s.live = nil
	}
	s.logger.Debug().Int("campaigns", len(list)).Msg("campaigns loaded")
	return nil
}

// Campaigns returns the cached campaigns in list order.
func (s *Store) Campaigns() []*campaign.Campaign {
	return slices.Clone(s.campaigns)
}

// Campaign returns the cached campaign with id.
func (s *Store) Campaign(id string) (*campaign.Campaign, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", campaign.ErrCampaignNotFound, id)
	}
	return s.campaigns[i], nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.campaigns, func(c *campaign.Campaign) bool { return c.ID == id })
}

func (s *Store) replace(c *campaign.Campaign) {
	if i := s.index(c.ID); i >= 0 {
		s.campaigns[i] = c
		return
	}
	s.campaigns = append(s.campaigns, c)
}

// SelectedID returns the selected campaign id, empty when none.
func (s *Store) SelectedID() string {
	return s.selected
}

// Selected returns the selected campaign or nil.
func (s *Store) Selected() *campaign.Campaign {
	if s.selected == "" {
		return nil
	}
	c, _ := s.Campaign(s.selected)
	return c
}

// Live returns the selected campaign's buffer, nil when nothing is selected.
func (s *Store) Live() grid.Grid {
	return s.live
}

// Select makes id the selected campaign. The outgoing buffer is flushed to
// the pending buffers even when empty. The incoming campaign resumes its
// pending buffer or starts from a copy of its persisted grid.
// An empty id clears the selection.
func (s *Store) Select(id string) error {
	var next *campaign.Campaign
	if id != "" {
		c, err := s.Campaign(id)
		if err != nil {
			return err
		}
		next = c
	}

	if s.selected != "" && s.live != nil {
		s.pending[s.selected] = s.live
	}

	if next == nil {
		s.selected = ""
		s.live = nil
		return nil
	}

	s.selected = next.ID
	if buf, ok := s.pending[next.ID]; ok {
		s.live = buf
	} else {
		s.live = next.ScheduleGrid.Clone()
	}
	s.logger.Debug().Str("campaign", next.ID).Bool("dirty", s.IsDirty(next.ID)).Msg("campaign selected")
	return nil
}

// buffer returns the unsaved buffer for id, if any.
func (s *Store) buffer(id string) (grid.Grid, bool) {
	if id != "" && id == s.selected && s.live != nil {
		return s.live, true
	}
	g, ok := s.pending[id]
	return g, ok
}

// Buffers returns a snapshot of the session for aggregation.
func (s *Store) Buffers() aggregate.Buffers {
	pending := make(map[string]grid.Grid, len(s.pending))
	for id, g := range s.pending {
		pending[id] = g
	}
	return aggregate.Buffers{SelectedID: s.selected, Live: s.live, Pending: pending}
}

// EffectiveGrid returns the buffer for id when present, else its persisted grid.
func (s *Store) EffectiveGrid(id string) (grid.Grid, error) {
	c, err := s.Campaign(id)
	if err != nil {
		return nil, err
	}
	if g, ok := s.buffer(id); ok {
		return g, nil
	}
	return c.ScheduleGrid, nil
}

// IsDirty reports whether id has a buffer that differs from its persisted grid.
func (s *Store) IsDirty(id string) bool {
	buf, ok := s.buffer(id)
	if !ok {
		return false
	}
	c, err := s.Campaign(id)
	if err != nil {
		return false
	}
	return !buf.Equal(c.ScheduleGrid)
}

// DirtyIDs returns the dirty campaign ids in list order.
func (s *Store) DirtyIDs() []string {
	var ids []string
	for _, c := range s.campaigns {
		if s.IsDirty(c.ID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// HasChanges reports whether any campaign is dirty.
func (s *Store) HasChanges() bool {
	return len(s.DirtyIDs()) > 0
}

// edit applies fn to the live buffer and mirrors the result into the
// pending buffers.
func (s *Store) edit(fn func(grid.Grid) grid.Grid) error {
	if s.selected == "" || s.live == nil {
		return ErrNoSelection
	}
	s.live = fn(s.live).Prune()
	s.pending[s.selected] = s.live
	return nil
}

// SetGrid replaces the live buffer.
func (s *Store) SetGrid(g grid.Grid) error {
	return s.edit(func(grid.Grid) grid.Grid { return g.Clone() })
}

// UpdateSlot sets the play count at date/index. Zero removes the entry.
func (s *Store) UpdateSlot(date string, index, count int) error {
	if err := checkSlot(date, index); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	return s.edit(func(g grid.Grid) grid.Grid { return g.Set(date, index, count) })
}

// Increment adds one play at date/index.
func (s *Store) Increment(date string, index int) error {
	if err := checkSlot(date, index); err != nil {
		return err
	}
	return s.edit(func(g grid.Grid) grid.Grid {
		return g.Set(date, index, g.PlayCount(date, index)+1)
	})
}

// Decrement removes one play at date/index, removing the entry at zero.
func (s *Store) Decrement(date string, index int) error {
	if err := checkSlot(date, index); err != nil {
		return err
	}
	return s.edit(func(g grid.Grid) grid.Grid {
		return g.Set(date, index, max(g.PlayCount(date, index)-1, 0))
	})
}

func checkSlot(date string, index int) error {
	if !dateutil.IsValidDate(date) {
		return fmt.Errorf("%w: %q", dateutil.ErrInvalidDateFormat, date)
	}
	if !grid.ValidIndex(index) {
		return fmt.Errorf("%w: got %d", grid.ErrInvalidSlot, index)
	}
	return nil
}

// Reset discards the selected campaign's buffer and restores its persisted grid.
func (s *Store) Reset() error {
	c := s.Selected()
	if c == nil {
		return ErrNoSelection
	}
	s.live = c.ScheduleGrid.Clone()
	delete(s.pending, c.ID)
	s.logger.Debug().Str("campaign", c.ID).Msg("edits discarded")
	return nil
}

// SaveOne persists the buffer of id when it is dirty. On failure the buffer
// is kept so the campaign stays dirty and can be retried.
func (s *Store) SaveOne(ctx context.Context, id string) error {
	c, err := s.Campaign(id)
	if err != nil {
		return err
	}
	buf, ok := s.buffer(id)
	if !ok || buf.Equal(c.ScheduleGrid) {
		return nil
	}

	saved, err := s.repo.UpdateCampaignGrid(ctx, id, buf.Sanitize())
	if err != nil {
		s.logger.Error().Err(err).Str("campaign", id).Msg("failed to save schedule")
		return fmt.Errorf("save campaign %q: %w", c.DisplayName(), err)
	}

	s.replace(saved)
	delete(s.pending, id)
	if id == s.selected {
		s.live = saved.ScheduleGrid.Clone()
	}
	s.logger.Info().Str("campaign", id).Int("slots", len(saved.ScheduleGrid)).Msg("schedule saved")
	return nil
}

// SaveAll saves every dirty campaign one at a time and reports each outcome.
// A failure does not stop later saves. Once ctx is done the remaining
// campaigns are reported with the context error and left dirty.
func (s *Store) SaveAll(ctx context.Context) []SaveResult {
	ids := s.DirtyIDs()
	results := make([]SaveResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, SaveResult{CampaignID: id, Err: err})
			continue
		}
		results = append(results, SaveResult{CampaignID: id, Err: s.SaveOne(ctx, id)})
	}
	return results
}

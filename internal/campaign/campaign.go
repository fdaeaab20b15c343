// Package campaign defines the advertising campaign domain types for spotgrid.
package campaign

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/javiermolinar/spotgrid/internal/dateutil"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// Validation errors.
var (
	ErrInvalidCampaign = errors.New("invalid campaign")
	ErrEndBeforeStart  = errors.New("end date must be on or after start date")
)

// Domain errors.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCannotToggle     = errors.New("only draft, active or paused campaigns can be toggled")
)

// Priority bounds. Higher priority plays first.
const (
	MinPriority     = 1
	MaxPriority     = 9
	DefaultPriority = 5
)

// Status represents the lifecycle state of a campaign.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused, StatusCompleted, StatusDeleted:
		return true
	default:
		return false
	}
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidCampaign, s)
	}
	return st, nil
}

// ContentRef references a playable asset. Title and duration are cached
// copies for display; the asset itself is owned elsewhere.
type ContentRef struct {
	ContentID       string `json:"content_id" validate:"required"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

// Campaign is an advertising campaign with its own weekly slot grid.
type Campaign struct {
	ID            string       `json:"id"`
	Name          string       `json:"name" validate:"required,max=200"`
	LocalizedName string       `json:"localized_name,omitempty"`
	Category      string       `json:"category"`
	Note          string       `json:"note"`
	StartDate     time.Time    `json:"start_date"` // date only, midnight
	EndDate       time.Time    `json:"end_date"`   // date only, midnight, inclusive
	Status        Status       `json:"status" validate:"required,oneof=draft active paused completed deleted"`
	Priority      int          `json:"priority" validate:"min=1,max=9"`
	ContentRefs   []ContentRef `json:"content_refs" validate:"dive"`
	ScheduleGrid  grid.Grid    `json:"schedule_grid"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New creates a draft campaign with validation.
// startDate and endDate are in YYYY-MM-DD format; an empty startDate means today
// and an empty endDate means the start date.
func New(name, category, startDate, endDate string, priority int) (*Campaign, error) {
	dr, err := dateutil.NewDateRange(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCampaign, err)
	}

	now := time.Now()
	c := &Campaign{
		Name:         strings.TrimSpace(name),
		Category:     category,
		StartDate:    dr.Start,
		EndDate:      dr.End,
		Status:       StatusDraft,
		Priority:     priority,
		ScheduleGrid: grid.Grid{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks struct constraints and the date range.
func (c *Campaign) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidCampaign, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidCampaign, err)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: %w", ErrInvalidCampaign, ErrEndBeforeStart)
	}
	return nil
}

// DisplayName returns the localized name when present.
func (c *Campaign) DisplayName() string {
	if c.LocalizedName != "" {
		return c.LocalizedName
	}
	return c.Name
}

// IsActive returns true if the campaign has active status.
func (c *Campaign) IsActive() bool {
	return c.Status == StatusActive
}

// Clone returns a deep copy so cached campaigns can be replaced without
// aliasing slices held by callers.
func (c *Campaign) Clone() *Campaign {
	out := *c
	out.ContentRefs = append([]ContentRef(nil), c.ContentRefs...)
	out.ScheduleGrid = c.ScheduleGrid.Clone()
	return &out
}

// NextToggleStatus returns the status a toggle moves the campaign to.
// Active campaigns pause; paused and draft campaigns activate.
func (c *Campaign) NextToggleStatus() (Status, error) {
	switch c.Status {
	case StatusActive:
		return StatusPaused, nil
	case StatusPaused, StatusDraft:
		return StatusActive, nil
	default:
		return "", fmt.Errorf("%w: campaign is %s", ErrCannotToggle, c.Status)
	}
}

// TotalDurationSeconds returns the combined duration of the content list.
func (c *Campaign) TotalDurationSeconds() int {
	total := 0
	for _, r := range c.ContentRefs {
		total += r.DurationSeconds
	}
	return total
}

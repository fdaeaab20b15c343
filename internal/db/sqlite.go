// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/dateutil"
	"github.com/javiermolinar/spotgrid/internal/grid"
)

// SQLite implements campaign.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ campaign.Repository = (*SQLite)(nil)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const campaignColumns = `
	id, name, localized_name, category, note, start_date, end_date,
	status, priority, created_at, updated_at
`

// ListCampaigns returns campaigns in insertion order.
// A nil status lists every campaign that is not deleted.
func (s *SQLite) ListCampaigns(ctx context.Context, status *campaign.Status) ([]*campaign.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE status != 'deleted' ORDER BY rowid`
	args := []any{}
	if status != nil {
		query = `SELECT ` + campaignColumns + ` FROM campaigns WHERE status = ? ORDER BY rowid`
		args = append(args, *status)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying campaigns: %w", err)
	}

	var campaigns []*campaign.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}
	_ = rows.Close()

	for _, c := range campaigns {
		if err := loadChildren(ctx, s.db, c); err != nil {
			return nil, err
		}
	}
	return campaigns, nil
}

// GetCampaign retrieves a campaign by ID.
func (s *SQLite) GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	return getCampaign(ctx, s.db, id)
}

func getCampaign(ctx context.Context, q querier, id string) (*campaign.Campaign, error) {
	row := q.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", campaign.ErrCampaignNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := loadChildren(ctx, q, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCampaign validates and stores a new campaign, assigning its ID.
func (s *SQLite) CreateCampaign(ctx context.Context, c *campaign.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.ID = uuid.NewString()
	c.ScheduleGrid = c.ScheduleGrid.Sanitize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO campaigns (` + campaignColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.LocalizedName,
		c.Category,
		c.Note,
		dateutil.FormatDate(c.StartDate),
		dateutil.FormatDate(c.EndDate),
		c.Status,
		c.Priority,
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting campaign: %w", err)
	}

	if err := insertContentRefs(ctx, tx, c.ID, c.ContentRefs); err != nil {
		return err
	}
	if err := insertSlots(ctx, tx, c.ID, c.ScheduleGrid); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpdateCampaign saves the campaign fields and content list. The schedule
// grid is left untouched.
func (s *SQLite) UpdateCampaign(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE campaigns
		SET name = ?, localized_name = ?, category = ?, note = ?, start_date = ?, end_date = ?,
		    status = ?, priority = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		c.Name,
		c.LocalizedName,
		c.Category,
		c.Note,
		dateutil.FormatDate(c.StartDate),
		dateutil.FormatDate(c.EndDate),
		c.Status,
		c.Priority,
		time.Now().Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating campaign: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, fmt.Errorf("%w: %s", campaign.ErrCampaignNotFound, c.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM content_refs WHERE campaign_id = ?`, c.ID); err != nil {
		return nil, fmt.Errorf("clearing content refs: %w", err)
	}
	if err := insertContentRefs(ctx, tx, c.ID, c.ContentRefs); err != nil {
		return nil, err
	}

	updated, err := getCampaign(ctx, tx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, nil
}

// DeleteCampaign marks a campaign deleted, or removes it with its content
// and slots when hard is set.
func (s *SQLite) DeleteCampaign(ctx context.Context, id string, hard bool) error {
	if !hard {
		query := `UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ?`
		result, err := s.db.ExecContext(ctx, query, campaign.StatusDeleted, time.Now().Format(time.RFC3339), id)
		if err != nil {
			return fmt.Errorf("deleting campaign: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return fmt.Errorf("%w: %s", campaign.ErrCampaignNotFound, id)
		}
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM schedule_slots WHERE campaign_id = ?`,
		`DELETE FROM content_refs WHERE campaign_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("deleting campaign children: %w", err)
		}
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting campaign: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", campaign.ErrCampaignNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ToggleCampaignStatus pauses an active campaign or activates a paused or
// draft one.
func (s *SQLite) ToggleCampaignStatus(ctx context.Context, id string) (*campaign.Campaign, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := getCampaign(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	next, err := c.NextToggleStatus()
	if err != nil {
		return nil, err
	}

	query := `UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, next, time.Now().Format(time.RFC3339), id); err != nil {
		return nil, fmt.Errorf("updating campaign status: %w", err)
	}

	updated, err := getCampaign(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, nil
}

// CloneCampaign copies a campaign, its content and its grid into a new draft.
func (s *SQLite) CloneCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	src, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	cp := src.Clone()
	cp.ID = ""
	cp.Name = src.Name + " (copy)"
	if cp.LocalizedName != "" {
		cp.LocalizedName += " (copy)"
	}
	cp.Status = campaign.StatusDraft
	cp.CreatedAt = time.Time{}

	if err := s.CreateCampaign(ctx, cp); err != nil {
		return nil, fmt.Errorf("cloning campaign: %w", err)
	}
	return s.GetCampaign(ctx, cp.ID)
}

// UpdateCampaignGrid replaces the whole schedule grid of a campaign.
// Malformed entries are dropped before writing.
func (s *SQLite) UpdateCampaignGrid(ctx context.Context, id string, g grid.Grid) (*campaign.Campaign, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `UPDATE campaigns SET updated_at = ? WHERE id = ?`, time.Now().Format(time.RFC3339), id)
	if err != nil {
		return nil, fmt.Errorf("touching campaign: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, fmt.Errorf("%w: %s", campaign.ErrCampaignNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_slots WHERE campaign_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clearing schedule: %w", err)
	}
	if err := insertSlots(ctx, tx, id, g.Sanitize()); err != nil {
		return nil, err
	}

	updated, err := getCampaign(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row scanner) (*campaign.Campaign, error) {
	var (
		c                  campaign.Campaign
		startDate, endDate string
		createdAt          string
		updatedAt          string
	)
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.LocalizedName,
		&c.Category,
		&c.Note,
		&startDate,
		&endDate,
		&c.Status,
		&c.Priority,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}

	if c.StartDate, err = parseDate(startDate); err != nil {
		return nil, fmt.Errorf("parsing start date: %w", err)
	}
	if c.EndDate, err = parseDate(endDate); err != nil {
		return nil, fmt.Errorf("parsing end date: %w", err)
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated at: %w", err)
	}
	return &c, nil
}

// loadChildren fills the content list and the schedule grid of c.
func loadChildren(ctx context.Context, q querier, c *campaign.Campaign) error {
	refRows, err := q.QueryContext(ctx, `
		SELECT content_id, title, duration_seconds
		FROM content_refs
		WHERE campaign_id = ?
		ORDER BY position
	`, c.ID)
	if err != nil {
		return fmt.Errorf("querying content refs: %w", err)
	}
	defer func() { _ = refRows.Close() }()

	c.ContentRefs = nil
	for refRows.Next() {
		var ref campaign.ContentRef
		if err := refRows.Scan(&ref.ContentID, &ref.Title, &ref.DurationSeconds); err != nil {
			return fmt.Errorf("scanning content ref: %w", err)
		}
		c.ContentRefs = append(c.ContentRefs, ref)
	}
	if err := refRows.Err(); err != nil {
		return fmt.Errorf("iterating content refs: %w", err)
	}

	slotRows, err := q.QueryContext(ctx, `
		SELECT slot_date, slot_index, play_count
		FROM schedule_slots
		WHERE campaign_id = ?
		ORDER BY slot_date, slot_index
	`, c.ID)
	if err != nil {
		return fmt.Errorf("querying schedule: %w", err)
	}
	defer func() { _ = slotRows.Close() }()

	c.ScheduleGrid = grid.Grid{}
	for slotRows.Next() {
		var sl grid.Slot
		if err := slotRows.Scan(&sl.Date, &sl.Index, &sl.PlayCount); err != nil {
			return fmt.Errorf("scanning slot: %w", err)
		}
		c.ScheduleGrid = append(c.ScheduleGrid, sl)
	}
	if err := slotRows.Err(); err != nil {
		return fmt.Errorf("iterating schedule: %w", err)
	}
	return nil
}

func insertContentRefs(ctx context.Context, tx *sql.Tx, campaignID string, refs []campaign.ContentRef) error {
	if len(refs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content_refs (campaign_id, position, content_id, title, duration_seconds)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, ref := range refs {
		if _, err := stmt.ExecContext(ctx, campaignID, i, ref.ContentID, ref.Title, ref.DurationSeconds); err != nil {
			return fmt.Errorf("inserting content ref %q: %w", ref.ContentID, err)
		}
	}
	return nil
}

func insertSlots(ctx context.Context, tx *sql.Tx, campaignID string, g grid.Grid) error {
	if len(g) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedule_slots (campaign_id, slot_date, slot_index, play_count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, sl := range g {
		if _, err := stmt.ExecContext(ctx, campaignID, sl.Date, sl.Index, sl.PlayCount); err != nil {
			return fmt.Errorf("inserting slot %s: %w", sl.Key(), err)
		}
	}
	return nil
}

// parseDate parses a stored calendar date as local midnight. SQLite may
// hand back date-like text with a "T00:00:00Z" suffix; only the date part
// is kept.
func parseDate(s string) (time.Time, error) {
	if len(s) >= 10 {
		if t, err := time.ParseInLocation(dateutil.Layout, s[:10], time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

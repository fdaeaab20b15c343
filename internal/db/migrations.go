package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS campaigns (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			localized_name TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			note           TEXT NOT NULL DEFAULT '',
			start_date     TEXT NOT NULL,
			end_date       TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'active', 'paused', 'completed', 'deleted')),
			priority       INTEGER NOT NULL DEFAULT 5 CHECK(priority BETWEEN 1 AND 9),
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS content_refs (
			campaign_id      TEXT NOT NULL REFERENCES campaigns(id),
			position         INTEGER NOT NULL,
			content_id       TEXT NOT NULL,
			title            TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (campaign_id, position)
		);

		CREATE TABLE IF NOT EXISTS schedule_slots (
			campaign_id TEXT NOT NULL REFERENCES campaigns(id),
			slot_date   TEXT NOT NULL,
			slot_index  INTEGER NOT NULL CHECK(slot_index BETWEEN 0 AND 47),
			play_count  INTEGER NOT NULL CHECK(play_count > 0),
			PRIMARY KEY (campaign_id, slot_date, slot_index)
		);

		CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);
		CREATE INDEX IF NOT EXISTS idx_schedule_slots_date ON schedule_slots(slot_date);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating campaign tables: %w", err)
	}

	return nil
}

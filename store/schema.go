package store

import (
	"context"
	"fmt"
)

// schemaStatements create the local development schema. Production runs
// against a managed Postgres where these tables already exist; EnsureSchema
// is only invoked for the SQLite fallback.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS report_requests (
		id TEXT PRIMARY KEY,
		archetype_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		organization TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		access_count INTEGER NOT NULL DEFAULT 0,
		last_accessed TIMESTAMP,
		assessment_answers TEXT,
		access_url TEXT,
		email_sent_at TIMESTAMP,
		email_send_attempts INTEGER NOT NULL DEFAULT 0,
		email_error TEXT,
		email_error_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_report_requests_token ON report_requests (archetype_id, access_token)`,
	`CREATE INDEX IF NOT EXISTS idx_report_requests_status ON report_requests (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS "Core_Archetype_Overview" (
		archetype_id TEXT PRIMARY KEY,
		archetype_name TEXT,
		family_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS "Analysis_Archetype_Full_Reports" (
		archetype_id TEXT PRIMARY KEY,
		title TEXT,
		introduction TEXT,
		executive_summary TEXT,
		categories TEXT,
		updated_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS "Analysis_Archetype_SWOT" (
		archetype_id TEXT PRIMARY KEY,
		strengths TEXT,
		weaknesses TEXT,
		opportunities TEXT,
		threats TEXT,
		updated_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS "Analysis_Archetype_Strategic_Recommendations" (
		archetype_id TEXT NOT NULL,
		title TEXT,
		description TEXT,
		priority INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS level3_report_secure (
		archetype_id TEXT PRIMARY KEY,
		title TEXT,
		executive_summary TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS level4_report_secure (
		archetype_id TEXT PRIMARY KEY,
		title TEXT,
		executive_summary TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS level4_deepdive_report_data (
		archetype_id TEXT PRIMARY KEY,
		title TEXT,
		executive_summary TEXT,
		swot TEXT,
		strategic_recommendations TEXT
	)`,
}

// EnsureSchema creates missing tables in the local SQLite database.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.UsePostgres {
		return nil
	}
	for _, stmt := range schemaStatements {
		if _, err := s.Conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

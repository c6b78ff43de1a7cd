package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gnomiproject/gnomiproject-go/models"
)

// Source tables for report payloads, most detailed first. These are the
// fixed Supabase table names; identifiers are quoted because several carry
// mixed case.
const (
	TableDeepDive    = "level4_deepdive_report_data"
	TableLevel4      = "level4_report_secure"
	TableLevel3      = "level3_report_secure"
	TableFullReports = "Analysis_Archetype_Full_Reports"
	TableOverview    = "Core_Archetype_Overview"
	TableSWOT        = "Analysis_Archetype_SWOT"
	TableRecs        = "Analysis_Archetype_Strategic_Recommendations"
)

// FetchAverageRow returns the raw All_Average row from the overview table.
// Numeric coercion is the caller's job (the average data service owns the
// all-values-finite invariant).
func (s *Store) FetchAverageRow(ctx context.Context) (map[string]any, error) {
	return s.FetchArchetypeRow(ctx, TableOverview, models.AllAverageID)
}

// FetchArchetypeRow reads a single row keyed by archetype_id from one of
// the fixed source tables, returning all columns as a map. ErrNotFound when
// the table has no row for the archetype.
func (s *Store) FetchArchetypeRow(ctx context.Context, table, archetypeID string) (map[string]any, error) {
	query := fmt.Sprintf(`SELECT * FROM %q WHERE archetype_id = ?`, table)

	rows, err := s.queryWithRetry(ctx, query, archetypeID)
	if err != nil {
		return nil, fmt.Errorf("query against %s failed: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query against %s failed: %w", table, err)
		}
		return nil, ErrNotFound
	}
	return scanRowMap(rows)
}

// scanRowMap scans the current row into a column-keyed map.
func scanRowMap(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	out := make(map[string]any, len(cols))
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			out[col] = string(b)
			continue
		}
		out[col] = values[i]
	}
	return out, nil
}

// ArchetypeName resolves the display name for an archetype from the
// overview table. ErrNotFound when the archetype has no row.
func (s *Store) ArchetypeName(ctx context.Context, archetypeID string) (string, error) {
	query := fmt.Sprintf(`SELECT archetype_name FROM %q WHERE archetype_id = ?`, TableOverview)

	rows, err := s.queryWithRetry(ctx, query, archetypeID)
	if err != nil {
		return "", fmt.Errorf("archetype name lookup failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("archetype name lookup failed: %w", err)
		}
		return "", ErrNotFound
	}

	var name sql.NullString
	if err := rows.Scan(&name); err != nil {
		return "", fmt.Errorf("failed to scan archetype name: %w", err)
	}
	return name.String, nil
}

// ListArchetypeIDs returns every archetype id in the overview table,
// excluding the All_Average sentinel.
func (s *Store) ListArchetypeIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT archetype_id FROM %q WHERE archetype_id != ? ORDER BY archetype_id`, TableOverview)

	rows, err := s.queryWithRetry(ctx, query, models.AllAverageID)
	if err != nil {
		return nil, fmt.Errorf("archetype list query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan archetype id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FetchSWOT reads the SWOT row for an archetype. ErrNotFound when absent.
func (s *Store) FetchSWOT(ctx context.Context, archetypeID string) (*models.SWOTAnalysis, error) {
	query := fmt.Sprintf(`SELECT strengths, weaknesses, opportunities, threats FROM %q WHERE archetype_id = ?`, TableSWOT)

	rows, err := s.queryWithRetry(ctx, query, archetypeID)
	if err != nil {
		return nil, fmt.Errorf("SWOT query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("SWOT query failed: %w", err)
		}
		return nil, ErrNotFound
	}

	var strengths, weaknesses, opportunities, threats sql.NullString
	if err := rows.Scan(&strengths, &weaknesses, &opportunities, &threats); err != nil {
		return nil, fmt.Errorf("failed to scan SWOT row: %w", err)
	}

	swot := &models.SWOTAnalysis{
		Strengths:     decodeStringList(strengths.String),
		Weaknesses:    decodeStringList(weaknesses.String),
		Opportunities: decodeStringList(opportunities.String),
		Threats:       decodeStringList(threats.String),
	}
	return swot, nil
}

// decodeStringList parses a JSON array column, returning an empty slice for
// null/malformed values rather than an error (data-shape failures degrade,
// they don't throw).
func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

// FetchRecommendations returns the strategic recommendations for an
// archetype ordered by priority.
func (s *Store) FetchRecommendations(ctx context.Context, archetypeID string) ([]models.Recommendation, error) {
	query := fmt.Sprintf(`SELECT title, description, priority FROM %q WHERE archetype_id = ? ORDER BY priority ASC`, TableRecs)

	rows, err := s.queryWithRetry(ctx, query, archetypeID)
	if err != nil {
		return nil, fmt.Errorf("recommendations query failed: %w", err)
	}
	defer rows.Close()

	recs := []models.Recommendation{}
	for rows.Next() {
		var r models.Recommendation
		if err := rows.Scan(&r.Title, &r.Description, &r.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// UpsertFullReport writes generated report content: existence check by
// archetype_id, then update-or-insert.
func (s *Store) UpsertFullReport(ctx context.Context, archetypeID, title, introduction, summary string, categories []models.MetricCategory) error {
	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	exists, err := s.rowExists(ctx, TableFullReports, archetypeID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if exists {
		query := fmt.Sprintf(`UPDATE %q SET title = ?, introduction = ?, executive_summary = ?, categories = ?, updated_at = ? WHERE archetype_id = ?`, TableFullReports)
		if _, err := s.exec(ctx, query, title, introduction, summary, string(categoriesJSON), now, archetypeID); err != nil {
			return fmt.Errorf("failed to update full report for %s: %w", archetypeID, err)
		}
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %q (archetype_id, title, introduction, executive_summary, categories, updated_at) VALUES (?, ?, ?, ?, ?, ?)`, TableFullReports)
	if _, err := s.exec(ctx, query, archetypeID, title, introduction, summary, string(categoriesJSON), now); err != nil {
		return fmt.Errorf("failed to insert full report for %s: %w", archetypeID, err)
	}
	return nil
}

// UpsertSWOT writes the SWOT bundle for an archetype with the same
// update-or-insert pattern.
func (s *Store) UpsertSWOT(ctx context.Context, archetypeID string, swot models.SWOTAnalysis) error {
	strengths, _ := json.Marshal(swot.Strengths)
	weaknesses, _ := json.Marshal(swot.Weaknesses)
	opportunities, _ := json.Marshal(swot.Opportunities)
	threats, _ := json.Marshal(swot.Threats)

	exists, err := s.rowExists(ctx, TableSWOT, archetypeID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if exists {
		query := fmt.Sprintf(`UPDATE %q SET strengths = ?, weaknesses = ?, opportunities = ?, threats = ?, updated_at = ? WHERE archetype_id = ?`, TableSWOT)
		if _, err := s.exec(ctx, query, string(strengths), string(weaknesses), string(opportunities), string(threats), now, archetypeID); err != nil {
			return fmt.Errorf("failed to update SWOT for %s: %w", archetypeID, err)
		}
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %q (archetype_id, strengths, weaknesses, opportunities, threats, updated_at) VALUES (?, ?, ?, ?, ?, ?)`, TableSWOT)
	if _, err := s.exec(ctx, query, archetypeID, string(strengths), string(weaknesses), string(opportunities), string(threats), now); err != nil {
		return fmt.Errorf("failed to insert SWOT for %s: %w", archetypeID, err)
	}
	return nil
}

// ReplaceRecommendations deletes all recommendation rows for an archetype
// and reinserts the given list. An empty list leaves the archetype with no
// rows (the delete still runs).
func (s *Store) ReplaceRecommendations(ctx context.Context, archetypeID string, recs []models.Recommendation) error {
	deleteQuery := fmt.Sprintf(`DELETE FROM %q WHERE archetype_id = ?`, TableRecs)
	if _, err := s.exec(ctx, deleteQuery, archetypeID); err != nil {
		return fmt.Errorf("failed to clear recommendations for %s: %w", archetypeID, err)
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %q (archetype_id, title, description, priority) VALUES (?, ?, ?, ?)`, TableRecs)
	for _, r := range recs {
		if _, err := s.exec(ctx, insertQuery, archetypeID, r.Title, r.Description, r.Priority); err != nil {
			return fmt.Errorf("failed to insert recommendation for %s: %w", archetypeID, err)
		}
	}
	return nil
}

func (s *Store) rowExists(ctx context.Context, table, archetypeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT 1 FROM %q WHERE archetype_id = ? LIMIT 1`, table)

	rows, err := s.queryWithRetry(ctx, query, archetypeID)
	if err != nil {
		return false, fmt.Errorf("existence check against %s failed: %w", table, err)
	}
	defer rows.Close()

	return rows.Next(), rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gnomiproject/gnomiproject-go/models"
)

// ErrNotFound is returned when no row matches a request lookup.
var ErrNotFound = errors.New("report request not found")

const requestColumns = `id, archetype_id, access_token, name, email, organization, status,
	created_at, expires_at, access_count, last_accessed, assessment_answers, access_url,
	email_sent_at, email_send_attempts, email_error, email_error_at`

// CreateRequest inserts a new report request row.
func (s *Store) CreateRequest(ctx context.Context, req *models.ReportRequest) error {
	query := `INSERT INTO report_requests
		(id, archetype_id, access_token, name, email, organization, status,
		 created_at, expires_at, access_count, assessment_answers, access_url, email_send_attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 0)`

	var answers any
	if len(req.AssessmentAnswers) > 0 {
		answers = string(req.AssessmentAnswers)
	}

	_, err := s.exec(ctx, query,
		req.ID, req.ArchetypeID, req.AccessToken, req.Name, req.Email, req.Organization,
		string(req.Status), req.CreatedAt, req.ExpiresAt, answers, req.AccessURL)
	if err != nil {
		return fmt.Errorf("failed to insert report request: %w", err)
	}
	return nil
}

// FindActiveRequest returns the row matching (archetypeID, token) with
// status 'active' and an unexpired timestamp. ErrNotFound when no such row
// exists.
func (s *Store) FindActiveRequest(ctx context.Context, archetypeID, token string) (*models.ReportRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM report_requests
		WHERE archetype_id = ? AND access_token = ? AND status = 'active' AND expires_at > ?`
	return s.findRequest(ctx, query, archetypeID, token, time.Now().UTC())
}

// FindRequestAnyStatus is the diagnostic lookup: it ignores status and
// expiry so callers can distinguish "not found" from "expired" or "wrong
// status".
func (s *Store) FindRequestAnyStatus(ctx context.Context, archetypeID, token string) (*models.ReportRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM report_requests
		WHERE archetype_id = ? AND access_token = ?`
	return s.findRequest(ctx, query, archetypeID, token)
}

func (s *Store) findRequest(ctx context.Context, query string, args ...any) (*models.ReportRequest, error) {
	rows, err := s.queryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("request lookup failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("request lookup failed: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanRequest(rows)
}

func scanRequest(rows *sql.Rows) (*models.ReportRequest, error) {
	var req models.ReportRequest
	var status string
	var lastAccessed, emailSentAt, emailErrorAt sql.NullTime
	var answers, accessURL, emailError sql.NullString

	err := rows.Scan(&req.ID, &req.ArchetypeID, &req.AccessToken, &req.Name, &req.Email,
		&req.Organization, &status, &req.CreatedAt, &req.ExpiresAt, &req.AccessCount,
		&lastAccessed, &answers, &accessURL, &emailSentAt, &req.EmailSendAttempts,
		&emailError, &emailErrorAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan report request: %w", err)
	}

	req.Status = models.RequestStatus(status)
	if lastAccessed.Valid {
		t := lastAccessed.Time
		req.LastAccessed = &t
	}
	if answers.Valid {
		req.AssessmentAnswers = []byte(answers.String)
	}
	req.AccessURL = accessURL.String
	if emailSentAt.Valid {
		t := emailSentAt.Time
		req.EmailSentAt = &t
	}
	req.EmailError = emailError.String
	if emailErrorAt.Valid {
		t := emailErrorAt.Time
		req.EmailErrorAt = &t
	}
	return &req, nil
}

// BumpAccess increments the access counter and stamps last_accessed.
// Best-effort telemetry; concurrent bumps may race on ordering but the
// counter stays monotonic.
func (s *Store) BumpAccess(ctx context.Context, id string) error {
	query := `UPDATE report_requests
		SET access_count = access_count + 1, last_accessed = ?
		WHERE id = ?`
	if _, err := s.exec(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to bump access count: %w", err)
	}
	return nil
}

// PendingRequests returns up to limit rows with status 'pending', oldest
// first.
func (s *Store) PendingRequests(ctx context.Context, limit int) ([]*models.ReportRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM report_requests
		WHERE status = 'pending' ORDER BY created_at ASC LIMIT ?`

	rows, err := s.queryWithRetry(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pending request query failed: %w", err)
	}
	defer rows.Close()

	var out []*models.ReportRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// ListRequests returns recent requests for the admin dashboard.
func (s *Store) ListRequests(ctx context.Context, limit int) ([]*models.ReportRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM report_requests
		ORDER BY created_at DESC LIMIT ?`

	rows, err := s.queryWithRetry(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("request list query failed: %w", err)
	}
	defer rows.Close()

	var out []*models.ReportRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// SetAccessURL persists a generated access URL on a request row.
func (s *Store) SetAccessURL(ctx context.Context, id, url string) error {
	if _, err := s.exec(ctx, `UPDATE report_requests SET access_url = ? WHERE id = ?`, url, id); err != nil {
		return fmt.Errorf("failed to persist access URL: %w", err)
	}
	return nil
}

// MarkEmailSent transitions a row pending -> active and stamps
// email_sent_at.
func (s *Store) MarkEmailSent(ctx context.Context, id string) error {
	query := `UPDATE report_requests
		SET status = 'active', email_sent_at = ?, email_error = NULL, email_error_at = NULL
		WHERE id = ?`
	if _, err := s.exec(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

// RecordEmailError stores the failure on the row and bumps the attempt
// counter. The row stays 'pending' so the next poll retries.
func (s *Store) RecordEmailError(ctx context.Context, id, message string) error {
	query := `UPDATE report_requests
		SET email_error = ?, email_error_at = ?, email_send_attempts = email_send_attempts + 1
		WHERE id = ?`
	if _, err := s.exec(ctx, query, message, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to record email error: %w", err)
	}
	return nil
}

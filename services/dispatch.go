package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gnomiproject/gnomiproject-go/config"
	"github.com/gnomiproject/gnomiproject-go/email"
	"github.com/gnomiproject/gnomiproject-go/metrics"
	"github.com/gnomiproject/gnomiproject-go/models"
)

// DispatchStore is the slice of the store the email worker needs.
type DispatchStore interface {
	PendingRequests(ctx context.Context, limit int) ([]*models.ReportRequest, error)
	SetAccessURL(ctx context.Context, id, url string) error
	MarkEmailSent(ctx context.Context, id string) error
	RecordEmailError(ctx context.Context, id, message string) error
	ArchetypeName(ctx context.Context, archetypeID string) (string, error)
}

// EmailSender abstracts the transactional email client so tests can fake
// sends.
type EmailSender interface {
	SendReportReady(props email.ReportEmailProps) error
	SendTeamNotification(props email.TeamNotificationProps) error
}

// DispatchResult aggregates one poll of the pending queue.
type DispatchResult struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// EmailDispatchService is the poll-based worker over 'pending' report
// requests. Invoked on demand (admin endpoint) or via the optional interval
// loop; it is not a long-running process by itself.
type EmailDispatchService struct {
	store  DispatchStore
	sender EmailSender
	origin string
}

// NewEmailDispatchService creates the dispatch worker.
func NewEmailDispatchService(dispatchStore DispatchStore, sender EmailSender) *EmailDispatchService {
	return &EmailDispatchService{
		store:  dispatchStore,
		sender: sender,
		origin: config.SiteOrigin,
	}
}

// ProcessPending polls up to the configured batch of pending rows, oldest
// first, and processes each independently. One row's failure never aborts
// the batch; failed rows stay 'pending' and the next poll retries them.
func (s *EmailDispatchService) ProcessPending(ctx context.Context) (*DispatchResult, error) {
	rows, err := s.store.PendingRequests(ctx, config.EmailBatchSize)
	if err != nil {
		return nil, fmt.Errorf("could not poll pending requests: %w", err)
	}

	result := &DispatchResult{}
	for _, req := range rows {
		result.Processed++
		if err := s.processRequest(ctx, req); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", req.ID, err))
			continue
		}
		result.Sent++
	}

	if result.Processed > 0 {
		log.Printf("Email dispatch: %d processed, %d sent, %d failed", result.Processed, result.Sent, result.Failed)
	}
	return result, nil
}

func (s *EmailDispatchService) processRequest(ctx context.Context, req *models.ReportRequest) error {
	accessURL := req.AccessURL
	if accessURL == "" {
		accessURL = s.BuildAccessURL(req.ArchetypeID, req.AccessToken)
		if err := s.store.SetAccessURL(ctx, req.ID, accessURL); err != nil {
			// The generated URL is still usable for this send; only the
			// persisted copy is missing
			log.Printf("WARNING: could not persist access URL for %s: %v", req.ID, err)
		}
	}

	archetypeName, err := s.store.ArchetypeName(ctx, req.ArchetypeID)
	if err != nil || archetypeName == "" {
		archetypeName = "your employer archetype"
	}

	sendErr := s.sender.SendReportReady(email.ReportEmailProps{
		Name:          req.Name,
		To:            req.Email,
		ArchetypeID:   req.ArchetypeID,
		ArchetypeName: archetypeName,
		AccessURL:     accessURL,
		AccessToken:   req.AccessToken,
		ExpiresAt:     req.ExpiresAt,
	})
	if sendErr != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		if recErr := s.store.RecordEmailError(ctx, req.ID, sendErr.Error()); recErr != nil {
			log.Printf("WARNING: could not record email error for %s: %v", req.ID, recErr)
		}
		return fmt.Errorf("send failed: %w", sendErr)
	}

	metrics.EmailsSent.WithLabelValues("sent").Inc()
	if err := s.store.MarkEmailSent(ctx, req.ID); err != nil {
		// The email went out; a bookkeeping failure must not fail the row
		log.Printf("WARNING: could not mark email sent for %s: %v", req.ID, err)
	}

	s.notifyTeam(req, archetypeName)
	return nil
}

// notifyTeam fires the internal notification. Best-effort: errors are
// logged only, and test-looking addresses are skipped.
func (s *EmailDispatchService) notifyTeam(req *models.ReportRequest, archetypeName string) {
	if strings.Contains(strings.ToLower(req.Email), "test@") {
		return
	}
	err := s.sender.SendTeamNotification(email.TeamNotificationProps{
		RequesterName: req.Name,
		RequesterOrg:  req.Organization,
		Email:         req.Email,
		ArchetypeID:   req.ArchetypeID,
		ArchetypeName: archetypeName,
		RequestedAt:   req.CreatedAt,
	})
	if err != nil {
		log.Printf("WARNING: team notification failed for %s: %v", req.ID, err)
	}
}

// BuildAccessURL renders the public report URL for a request.
func (s *EmailDispatchService) BuildAccessURL(archetypeID, token string) string {
	return fmt.Sprintf("%s/report/%s/%s", strings.TrimRight(s.origin, "/"), archetypeID, token)
}

// StartDispatchLoop runs ProcessPending on an interval when configured.
// Interval 0 disables the loop (dispatch stays on-demand).
func (s *EmailDispatchService) StartDispatchLoop(ctx context.Context) {
	if config.DispatchInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(config.DispatchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.ProcessPending(ctx); err != nil {
					log.Printf("WARNING: scheduled email dispatch failed: %v", err)
				}
			}
		}
	}()
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/gnomiproject/gnomiproject-go/config"
	"github.com/gnomiproject/gnomiproject-go/models"
)

// RequestWriter is the slice of the store the request creator needs.
type RequestWriter interface {
	CreateRequest(ctx context.Context, req *models.ReportRequest) error
}

// RequestLister serves the admin dashboard listing.
type RequestLister interface {
	ListRequests(ctx context.Context, limit int) ([]*models.ReportRequest, error)
}

// ReportRequestInput is an assessment submission requesting a full report.
type ReportRequestInput struct {
	Name         string                   `json:"name" binding:"required"`
	Email        string                   `json:"email" binding:"required,email"`
	Organization string                   `json:"organization"`
	ArchetypeID  string                   `json:"archetypeId" binding:"required"`
	Answers      models.AssessmentAnswers `json:"answers"`
}

// ReportRequestService creates report request rows from submissions.
type ReportRequestService struct {
	store RequestWriter
	urls  *EmailDispatchService
}

// NewReportRequestService wires request creation to the store and to the
// dispatcher's URL builder so both produce identical access URLs.
func NewReportRequestService(writer RequestWriter, dispatcher *EmailDispatchService) *ReportRequestService {
	return &ReportRequestService{store: writer, urls: dispatcher}
}

// Create persists a new pending report request with a fresh opaque token.
// The email dispatch worker picks it up on its next poll.
func (s *ReportRequestService) Create(ctx context.Context, input ReportRequestInput) (*models.ReportRequest, error) {
	if !models.IsValidArchetypeID(input.ArchetypeID) {
		return nil, fmt.Errorf("unknown archetype id %q", input.ArchetypeID)
	}

	var snapshot json.RawMessage
	if len(input.Answers) > 0 {
		encoded, err := json.Marshal(input.Answers)
		if err != nil {
			return nil, fmt.Errorf("could not encode assessment snapshot: %w", err)
		}
		snapshot = encoded
	}

	now := time.Now().UTC()
	token := uuid.NewString()
	req := &models.ReportRequest{
		ID:                ulid.Make().String(),
		ArchetypeID:       input.ArchetypeID,
		AccessToken:       token,
		Name:              input.Name,
		Email:             input.Email,
		Organization:      input.Organization,
		Status:            models.StatusPending,
		CreatedAt:         now,
		ExpiresAt:         now.Add(time.Duration(config.RequestExpiryHours) * time.Hour),
		AssessmentAnswers: snapshot,
		AccessURL:         s.urls.BuildAccessURL(input.ArchetypeID, token),
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gnomiproject/gnomiproject-go/cache"
	"github.com/gnomiproject/gnomiproject-go/config"
	"github.com/gnomiproject/gnomiproject-go/metrics"
	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/store"
)

// AdminViewToken is the sentinel token that bypasses row validation. It is
// only honored for callers holding valid admin credentials; an
// unauthenticated request presenting it is denied outright.
const AdminViewToken = "admin-view"

// RequestStore is the slice of the store the access layer needs.
type RequestStore interface {
	FindActiveRequest(ctx context.Context, archetypeID, token string) (*models.ReportRequest, error)
	FindRequestAnyStatus(ctx context.Context, archetypeID, token string) (*models.ReportRequest, error)
	BumpAccess(ctx context.Context, id string) error
}

// ReportAccessService validates opaque access tokens and runs the
// best-effort access bookkeeping.
type ReportAccessService struct {
	store RequestStore
	cache *cache.Manager

	// bookkeeping failures flow through their own channel so a telemetry
	// write error can never be mistaken for an access denial
	bookkeepErrs chan error
}

// NewReportAccessService creates the access service and starts the
// bookkeeping error drain.
func NewReportAccessService(requestStore RequestStore, cacheManager *cache.Manager) *ReportAccessService {
	s := &ReportAccessService{
		store:        requestStore,
		cache:        cacheManager,
		bookkeepErrs: make(chan error, 64),
	}
	go s.drainBookkeepingErrors()
	return s
}

func (s *ReportAccessService) drainBookkeepingErrors() {
	for err := range s.bookkeepErrs {
		log.Printf("WARNING: access bookkeeping failed: %v", err)
	}
}

// ValidateAccess checks an (archetypeId, token) pair. isAdmin reflects
// whether the caller presented valid admin credentials; it gates the
// admin-view bypass.
func (s *ReportAccessService) ValidateAccess(ctx context.Context, archetypeID, token string, isAdmin bool) models.AccessResult {
	if token == AdminViewToken {
		if isAdmin {
			metrics.ReportAccesses.WithLabelValues("admin").Inc()
			return models.AccessResult{State: models.AccessGranted, Reason: "administrative view"}
		}
		metrics.ReportAccesses.WithLabelValues("denied").Inc()
		return models.AccessResult{State: models.AccessDenied, Reason: "administrative view requires admin authentication"}
	}

	req, err := s.store.FindActiveRequest(ctx, archetypeID, token)
	if err == nil {
		s.cache.TrackSession(archetypeID, token)
		s.bumpAccessAsync(req.ID)
		metrics.ReportAccesses.WithLabelValues("granted").Inc()
		return models.AccessResult{State: models.AccessGranted, Request: req}
	}

	if !errors.Is(err, store.ErrNotFound) {
		metrics.ReportAccesses.WithLabelValues("error").Inc()
		return models.AccessResult{State: models.AccessDenied, Reason: "report access could not be verified right now"}
	}

	metrics.ReportAccesses.WithLabelValues("denied").Inc()
	return models.AccessResult{State: models.AccessDenied, Reason: s.diagnoseDenial(ctx, archetypeID, token)}
}

// diagnoseDenial re-fetches by token+archetype ignoring status and expiry
// to produce a specific reason for the miss.
func (s *ReportAccessService) diagnoseDenial(ctx context.Context, archetypeID, token string) string {
	req, err := s.store.FindRequestAnyStatus(ctx, archetypeID, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "no report request found for this link"
		}
		return "report access could not be verified right now"
	}

	if req.IsExpired() {
		return fmt.Sprintf("access expired on %s", req.ExpiresAt.Format("January 2, 2006"))
	}
	if req.Status != models.StatusActive {
		return fmt.Sprintf("report request is not active (status: %s)", req.Status)
	}
	return "report access is not valid"
}

// bumpAccessAsync runs the access-count increment off the request path.
// A failure is reported on the bookkeeping channel, never to the caller;
// the grant already happened.
func (s *ReportAccessService) bumpAccessAsync(requestID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.BumpAccess(ctx, requestID); err != nil {
			select {
			case s.bookkeepErrs <- err:
			default:
				log.Printf("WARNING: bookkeeping error channel full, dropping: %v", err)
			}
		}
	}()
}

// StartRevalidationLoop re-checks granted sessions on the configured
// interval. Hard denials (row gone, expired, status change) drop the
// session; transient store failures leave it alone.
func (s *ReportAccessService) StartRevalidationLoop(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(config.RevalidationInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.revalidateSessions(ctx)
			}
		}
	}()
}

func (s *ReportAccessService) revalidateSessions(ctx context.Context) {
	for _, session := range s.cache.Sessions() {
		_, err := s.store.FindActiveRequest(ctx, session.ArchetypeID, session.Token)
		if err == nil {
			s.cache.TrackSession(session.ArchetypeID, session.Token)
			continue
		}
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("Revalidation dropped session for archetype %s", session.ArchetypeID)
			s.cache.DropSession(session.ArchetypeID, session.Token)
		}
		// Transient failure: keep the session; the next tick retries
	}
}

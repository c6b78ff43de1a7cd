package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gnomiproject/gnomiproject-go/cache"
	"github.com/gnomiproject/gnomiproject-go/metrics"
	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/store"
)

// payloadTables is the probe order: most detailed source first.
var payloadTables = []string{
	store.TableDeepDive,
	store.TableLevel4,
	store.TableLevel3,
	store.TableFullReports,
}

// PayloadStore is the slice of the store the payload service needs.
type PayloadStore interface {
	FetchArchetypeRow(ctx context.Context, table, archetypeID string) (map[string]any, error)
	FetchSWOT(ctx context.Context, archetypeID string) (*models.SWOTAnalysis, error)
	FetchRecommendations(ctx context.Context, archetypeID string) ([]models.Recommendation, error)
}

// ReportPayloadService retrieves and normalizes report payloads, with a
// keyed freshness cache in front of the store.
type ReportPayloadService struct {
	store PayloadStore
	cache *cache.Manager
}

// NewReportPayloadService wires the payload service to its store slice and
// cache.
func NewReportPayloadService(payloadStore PayloadStore, cacheManager *cache.Manager) *ReportPayloadService {
	return &ReportPayloadService{
		store: payloadStore,
		cache: cacheManager,
	}
}

// GetReport returns the canonical report payload for an archetype. Source
// tables are probed most-detailed-first; when all are empty the payload is
// assembled from the overview, SWOT, and recommendation tables. Fresh
// results are cached; bypassCache forces a re-read.
func (s *ReportPayloadService) GetReport(ctx context.Context, archetypeID string, bypassCache bool) (*models.ArchetypeReport, error) {
	if !bypassCache {
		if report, ok := s.cache.GetPayload(archetypeID); ok {
			metrics.PayloadCache.WithLabelValues("hit").Inc()
			return report, nil
		}
	}
	metrics.PayloadCache.WithLabelValues("miss").Inc()

	for _, table := range payloadTables {
		row, err := s.store.FetchArchetypeRow(ctx, table, archetypeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			// A transient failure on one source should not hide a usable
			// row in a lower-priority table
			log.Printf("WARNING: payload probe against %s failed: %v", table, err)
			continue
		}

		report := store.NormalizeReportRow(table, archetypeID, row)
		s.enrichFromSideTables(ctx, archetypeID, report)
		s.cache.SetPayload(archetypeID, report)
		return report, nil
	}

	report, err := s.assembleFallback(ctx, archetypeID)
	if err != nil {
		return nil, err
	}
	s.cache.SetPayload(archetypeID, report)
	return report, nil
}

// enrichFromSideTables fills SWOT and recommendations from their dedicated
// tables when the source row did not carry them inline. Misses degrade to
// empty values.
func (s *ReportPayloadService) enrichFromSideTables(ctx context.Context, archetypeID string, report *models.ArchetypeReport) {
	if len(report.SWOT.Strengths) == 0 && len(report.SWOT.Weaknesses) == 0 &&
		len(report.SWOT.Opportunities) == 0 && len(report.SWOT.Threats) == 0 {
		if swot, err := s.store.FetchSWOT(ctx, archetypeID); err == nil {
			report.SWOT = *swot
		}
	}
	if len(report.Recommendations) == 0 {
		if recs, err := s.store.FetchRecommendations(ctx, archetypeID); err == nil {
			report.Recommendations = recs
		}
	}
}

// assembleFallback builds a combined payload from the separate overview,
// SWOT, and recommendation tables when every report table is empty.
func (s *ReportPayloadService) assembleFallback(ctx context.Context, archetypeID string) (*models.ArchetypeReport, error) {
	row, err := s.store.FetchArchetypeRow(ctx, store.TableOverview, archetypeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("no report data available for archetype %s", archetypeID)
		}
		return nil, fmt.Errorf("fallback assembly failed for %s: %w", archetypeID, err)
	}

	report := store.NormalizeReportRow(store.TableOverview, archetypeID, row)
	s.enrichFromSideTables(ctx, archetypeID, report)
	report.Source = "assembled"
	return report, nil
}

// Invalidate drops the cached payload for an archetype (used after
// regeneration).
func (s *ReportPayloadService) Invalidate(archetypeID string) {
	s.cache.InvalidatePayload(archetypeID)
}

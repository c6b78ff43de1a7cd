// Package services holds the application logic between the HTTP layer and
// the store.
package services

import (
	"context"
	"log"

	"github.com/gnomiproject/gnomiproject-go/cache"
	"github.com/gnomiproject/gnomiproject-go/config"
	"github.com/gnomiproject/gnomiproject-go/metrics"
	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/store"
)

// AverageSource fetches the raw All_Average row.
type AverageSource interface {
	FetchAverageRow(ctx context.Context) (map[string]any, error)
}

// AverageDataService serves the population-wide baseline row through a TTL
// cache with a stale-if-error tier and a hardcoded final fallback.
type AverageDataService struct {
	source AverageSource
	cache  *cache.Manager
}

// NewAverageDataService creates the service with an explicit cache (no
// package singleton; tests inject their own manager).
func NewAverageDataService(source AverageSource, cacheManager *cache.Manager) *AverageDataService {
	return &AverageDataService{
		source: source,
		cache:  cacheManager,
	}
}

// GetAverageData returns the archetype average row. Resolution order:
// unexpired cache, live fetch (bounded by the configured timeout), stale
// cache, hardcoded defaults. Never returns an error; degraded results are
// flagged via UsingFallback.
func (s *AverageDataService) GetAverageData(ctx context.Context) models.AverageRow {
	if row, ok := s.cache.GetAverages(); ok {
		return row
	}

	fetchCtx, cancel := context.WithTimeout(ctx, config.AverageFetchTimeout)
	defer cancel()

	raw, err := s.source.FetchAverageRow(fetchCtx)
	if err != nil {
		// Transport failure: prefer any previously cached row, even expired
		if stale, ok := s.cache.GetStaleAverages(); ok {
			log.Printf("WARNING: average data fetch failed (%v); serving stale cache", err)
			return stale
		}
		log.Printf("WARNING: average data fetch failed (%v); serving hardcoded defaults", err)
		return s.serveDefaults()
	}

	row := processRawData(raw)
	if len(row) == 0 {
		log.Printf("WARNING: average data row was empty; serving hardcoded defaults")
		return s.serveDefaults()
	}

	s.cache.SetAverages(row, false)
	return row
}

// UsingFallback reports whether the currently cached averages are the
// hardcoded defaults.
func (s *AverageDataService) UsingFallback() bool {
	return s.cache.UsingFallback()
}

func (s *AverageDataService) serveDefaults() models.AverageRow {
	metrics.AverageFallbacks.Inc()
	defaults := models.CloneAverages(models.DefaultAverages)
	s.cache.SetAverages(defaults, true)
	return defaults
}

// processRawData converts every non-identity field to a number, replacing
// non-numeric values with 0. This guarantees the all-values-finite
// invariant on the average row.
func processRawData(raw map[string]any) models.AverageRow {
	row := models.AverageRow{}
	for key, val := range raw {
		if key == "id" || key == "archetype_id" || key == "archetype_name" || key == "family_id" {
			continue
		}
		if f, ok := store.CoerceFloat(val); ok {
			row[key] = f
		} else {
			row[key] = 0
		}
	}
	return row
}

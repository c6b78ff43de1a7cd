// Package cache provides in-memory TTL caching for average data, report
// payloads, and granted access sessions.
package cache

import (
	"log"
	"sync"
	"time"

	"github.com/gnomiproject/gnomiproject-go/config"
	"github.com/gnomiproject/gnomiproject-go/models"
)

// Manager coordinates the process-wide caches. It is constructed explicitly
// and injected into services rather than exposed as a package singleton, so
// tests get isolated instances.
//
// Locking: each cache region has its own mutex; no method acquires more than
// one at a time, so there is no lock ordering to get wrong.
type Manager struct {
	averageMu     sync.RWMutex
	averageRow    models.AverageRow
	averageExpiry time.Time
	usingFallback bool
	averageTTL    time.Duration

	payloadMu  sync.RWMutex
	payloads   map[string]*payloadEntry
	payloadTTL time.Duration

	sessionMu sync.RWMutex
	sessions  map[string]*AccessSession
}

type payloadEntry struct {
	report *models.ArchetypeReport
	expiry time.Time
}

// AccessSession tracks a granted (archetypeId, token) pair for periodic
// revalidation.
type AccessSession struct {
	ArchetypeID string
	Token       string
	GrantedAt   time.Time
	LastChecked time.Time
}

// NewManager creates a cache manager with TTLs from config.
func NewManager() *Manager {
	return NewManagerWithTTLs(config.AverageCacheTTL, config.PayloadCacheTTL)
}

// NewManagerWithTTLs creates a cache manager with explicit TTLs.
func NewManagerWithTTLs(averageTTL, payloadTTL time.Duration) *Manager {
	return &Manager{
		averageTTL: averageTTL,
		payloads:   make(map[string]*payloadEntry),
		payloadTTL: payloadTTL,
		sessions:   make(map[string]*AccessSession),
	}
}

// GetAverages returns the cached average row if it has not expired.
func (m *Manager) GetAverages() (models.AverageRow, bool) {
	m.averageMu.RLock()
	defer m.averageMu.RUnlock()

	if m.averageRow == nil || time.Now().After(m.averageExpiry) {
		return nil, false
	}
	return models.CloneAverages(m.averageRow), true
}

// GetStaleAverages returns the last cached average row even if expired.
// Used as the first fallback tier when a refresh fails.
func (m *Manager) GetStaleAverages() (models.AverageRow, bool) {
	m.averageMu.RLock()
	defer m.averageMu.RUnlock()

	if m.averageRow == nil {
		return nil, false
	}
	return models.CloneAverages(m.averageRow), true
}

// SetAverages stores a fresh average row and records whether it came from
// the hardcoded fallback.
func (m *Manager) SetAverages(row models.AverageRow, fallback bool) {
	m.averageMu.Lock()
	defer m.averageMu.Unlock()

	m.averageRow = models.CloneAverages(row)
	m.averageExpiry = time.Now().Add(m.averageTTL)
	m.usingFallback = fallback
}

// UsingFallback reports whether the cached averages are the hardcoded
// defaults rather than a live row.
func (m *Manager) UsingFallback() bool {
	m.averageMu.RLock()
	defer m.averageMu.RUnlock()
	return m.usingFallback
}

// GetPayload returns a cached report payload for an archetype, if fresh.
func (m *Manager) GetPayload(archetypeID string) (*models.ArchetypeReport, bool) {
	m.payloadMu.RLock()
	defer m.payloadMu.RUnlock()

	entry, ok := m.payloads[archetypeID]
	if !ok || time.Now().After(entry.expiry) {
		return nil, false
	}
	return entry.report, true
}

// SetPayload caches a report payload with the configured freshness window.
func (m *Manager) SetPayload(archetypeID string, report *models.ArchetypeReport) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()

	m.payloads[archetypeID] = &payloadEntry{
		report: report,
		expiry: time.Now().Add(m.payloadTTL),
	}
}

// InvalidatePayload drops a cached payload (used when callers force a
// bypass or after regeneration).
func (m *Manager) InvalidatePayload(archetypeID string) {
	m.payloadMu.Lock()
	defer m.payloadMu.Unlock()
	delete(m.payloads, archetypeID)
}

// TrackSession registers a granted access for periodic revalidation.
func (m *Manager) TrackSession(archetypeID, token string) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	key := archetypeID + ":" + token
	now := time.Now()
	if s, ok := m.sessions[key]; ok {
		s.LastChecked = now
		return
	}
	m.sessions[key] = &AccessSession{
		ArchetypeID: archetypeID,
		Token:       token,
		GrantedAt:   now,
		LastChecked: now,
	}
}

// DropSession removes a tracked session after a hard validation failure.
func (m *Manager) DropSession(archetypeID, token string) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
	delete(m.sessions, archetypeID+":"+token)
}

// Sessions returns a snapshot of tracked sessions.
func (m *Manager) Sessions() []AccessSession {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	out := make([]AccessSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out
}

// StartCleanupRoutine launches a background sweep that evicts expired
// payload entries and long-idle sessions.
func StartCleanupRoutine(m *Manager) {
	go func() {
		ticker := time.NewTicker(config.CacheCleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			evicted := m.cleanup()
			if evicted > 0 {
				log.Printf("Cache cleanup evicted %d entries", evicted)
			}
		}
	}()
}

func (m *Manager) cleanup() int {
	now := time.Now()
	evicted := 0

	m.payloadMu.Lock()
	for id, entry := range m.payloads {
		if now.After(entry.expiry) {
			delete(m.payloads, id)
			evicted++
		}
	}
	m.payloadMu.Unlock()

	m.sessionMu.Lock()
	for key, s := range m.sessions {
		// Sessions untouched for 24 hours are abandoned
		if now.Sub(s.LastChecked) > 24*time.Hour {
			delete(m.sessions, key)
			evicted++
		}
	}
	m.sessionMu.Unlock()

	return evicted
}

package cache

import (
	"testing"
	"time"

	"github.com/gnomiproject/gnomiproject-go/models"
)

func TestAveragesRoundTrip(t *testing.T) {
	m := NewManagerWithTTLs(time.Hour, time.Hour)

	if _, ok := m.GetAverages(); ok {
		t.Fatal("empty manager reported a cached row")
	}

	m.SetAverages(models.AverageRow{"Cost_Medical_Paid_Amount_PEPY": 11408}, false)

	row, ok := m.GetAverages()
	if !ok {
		t.Fatal("cached row not returned")
	}
	if row["Cost_Medical_Paid_Amount_PEPY"] != 11408 {
		t.Errorf("row = %v", row)
	}
	if m.UsingFallback() {
		t.Error("live row flagged as fallback")
	}
}

func TestAveragesReturnedCopyIsIsolated(t *testing.T) {
	m := NewManagerWithTTLs(time.Hour, time.Hour)
	m.SetAverages(models.AverageRow{"Risk_Average_Risk_Score": 0.97}, false)

	row, _ := m.GetAverages()
	row["Risk_Average_Risk_Score"] = 999

	again, _ := m.GetAverages()
	if again["Risk_Average_Risk_Score"] != 0.97 {
		t.Error("mutating a returned row changed the cached copy")
	}
}

func TestAveragesExpireButStayStale(t *testing.T) {
	m := NewManagerWithTTLs(20*time.Millisecond, time.Hour)
	m.SetAverages(models.AverageRow{"Risk_Average_Risk_Score": 0.97}, false)

	time.Sleep(40 * time.Millisecond)

	if _, ok := m.GetAverages(); ok {
		t.Error("expired row returned as fresh")
	}
	stale, ok := m.GetStaleAverages()
	if !ok {
		t.Fatal("expired row should still be available as stale")
	}
	if stale["Risk_Average_Risk_Score"] != 0.97 {
		t.Errorf("stale row = %v", stale)
	}
}

func TestAveragesFallbackFlag(t *testing.T) {
	m := NewManagerWithTTLs(time.Hour, time.Hour)
	m.SetAverages(models.AverageRow{"Risk_Average_Risk_Score": 0.97}, true)
	if !m.UsingFallback() {
		t.Error("fallback flag not recorded")
	}

	m.SetAverages(models.AverageRow{"Risk_Average_Risk_Score": 1.02}, false)
	if m.UsingFallback() {
		t.Error("fallback flag not cleared by a live row")
	}
}

func TestPayloadCacheLifecycle(t *testing.T) {
	m := NewManagerWithTTLs(time.Hour, time.Hour)

	if _, ok := m.GetPayload("a1"); ok {
		t.Fatal("empty cache reported a payload")
	}

	m.SetPayload("a1", &models.ArchetypeReport{ArchetypeID: "a1", Title: "t"})

	report, ok := m.GetPayload("a1")
	if !ok || report.Title != "t" {
		t.Fatalf("payload not returned: %v %v", report, ok)
	}
	if _, ok := m.GetPayload("b2"); ok {
		t.Error("payload leaked across archetype keys")
	}

	m.InvalidatePayload("a1")
	if _, ok := m.GetPayload("a1"); ok {
		t.Error("invalidated payload still served")
	}
}

func TestPayloadExpiry(t *testing.T) {
	m := NewManagerWithTTLs(time.Hour, 20*time.Millisecond)
	m.SetPayload("a1", &models.ArchetypeReport{ArchetypeID: "a1"})

	time.Sleep(40 * time.Millisecond)

	if _, ok := m.GetPayload("a1"); ok {
		t.Error("expired payload returned as fresh")
	}
}

func TestSessionTracking(t *testing.T) {
	m := NewManagerWithTTLs(time.Hour, time.Hour)

	m.TrackSession("a1", "tok1")
	m.TrackSession("a1", "tok1") // re-track refreshes, never duplicates
	m.TrackSession("b2", "tok2")

	sessions := m.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	m.DropSession("a1", "tok1")
	sessions = m.Sessions()
	if len(sessions) != 1 || sessions[0].ArchetypeID != "b2" {
		t.Errorf("sessions after drop = %+v", sessions)
	}
}

func TestCleanupEvictsExpiredPayloads(t *testing.T) {
	m := NewManagerWithTTLs(time.Hour, 20*time.Millisecond)
	m.SetPayload("a1", &models.ArchetypeReport{ArchetypeID: "a1"})
	m.SetPayload("b2", &models.ArchetypeReport{ArchetypeID: "b2"})
	m.TrackSession("a1", "tok1")

	time.Sleep(40 * time.Millisecond)

	evicted := m.cleanup()
	if evicted != 2 {
		t.Errorf("evicted = %d, want the 2 expired payloads", evicted)
	}
	if len(m.Sessions()) != 1 {
		t.Error("recent session should survive cleanup")
	}
}

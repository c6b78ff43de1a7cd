package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/store"
)

type fakeTracker struct {
	mu      sync.Mutex
	req     *models.ReportRequest
	findErr error
	bumps   int
	bumped  chan struct{}
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{bumped: make(chan struct{}, 4)}
}

func (f *fakeTracker) FindRequestAnyStatus(ctx context.Context, archetypeID, token string) (*models.ReportRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.req == nil {
		return nil, store.ErrNotFound
	}
	return f.req, nil
}

func (f *fakeTracker) BumpAccess(ctx context.Context, id string) error {
	f.mu.Lock()
	f.bumps++
	f.mu.Unlock()
	f.bumped <- struct{}{}
	return nil
}

func trackRouter(tracker TrackerStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/functions/v1/track-access/:archetypeId/:token", TrackAccessHandler(tracker))
	return r
}

func doTrack(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestTrackAccessReturnsPixelAndBumps(t *testing.T) {
	tracker := newFakeTracker()
	tracker.req = &models.ReportRequest{ID: "req1", ArchetypeID: "a1", AccessToken: "tok1"}
	r := trackRouter(tracker)

	w := doTrack(t, r, "/functions/v1/track-access/a1/tok1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/gif" {
		t.Errorf("Content-Type = %q, want image/gif", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if !bytes.Equal(w.Body.Bytes(), trackingPixel) {
		t.Error("response body is not the tracking pixel")
	}

	select {
	case <-tracker.bumped:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the access bump")
	}
}

func TestTrackAccessUnknownTokenStillReturnsPixel(t *testing.T) {
	r := trackRouter(newFakeTracker())

	w := doTrack(t, r, "/functions/v1/track-access/a1/unknown")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for unknown tokens", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), trackingPixel) {
		t.Error("response body is not the tracking pixel")
	}
}

func TestTrackAccessStoreFailureStillReturnsPixel(t *testing.T) {
	tracker := newFakeTracker()
	tracker.findErr = errors.New("driver: bad connection")
	r := trackRouter(tracker)

	w := doTrack(t, r, "/functions/v1/track-access/a1/tok1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when the store is down", w.Code)
	}
}

package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gnomiproject/gnomiproject-go/models"
)

type fakeRequestWriter struct {
	created []*models.ReportRequest
	err     error
}

func (f *fakeRequestWriter) CreateRequest(ctx context.Context, req *models.ReportRequest) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, req)
	return nil
}

func newTestRequestService(writer *fakeRequestWriter) *ReportRequestService {
	dispatch := newTestDispatch(newFakeDispatchStore(), &fakeSender{})
	return NewReportRequestService(writer, dispatch)
}

func TestCreateReportRequest(t *testing.T) {
	writer := &fakeRequestWriter{}
	svc := newTestRequestService(writer)

	req, err := svc.Create(context.Background(), ReportRequestInput{
		Name:         "Jordan",
		Email:        "jordan@acme.com",
		Organization: "Acme Corp",
		ArchetypeID:  "b2",
		Answers:      models.AssessmentAnswers{"q1": "q1b"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if req.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", req.Status)
	}
	if req.ID == "" || req.AccessToken == "" {
		t.Error("id and access token must be generated")
	}
	if req.AccessURL != "https://reports.example.com/report/b2/"+req.AccessToken {
		t.Errorf("AccessURL = %q does not match the dispatcher's URL format", req.AccessURL)
	}

	wantExpiry := time.Now().UTC().Add(72 * time.Hour)
	if diff := req.ExpiresAt.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("ExpiresAt = %v, want about 72h out", req.ExpiresAt)
	}

	var snapshot models.AssessmentAnswers
	if err := json.Unmarshal(req.AssessmentAnswers, &snapshot); err != nil {
		t.Fatalf("snapshot does not decode: %v", err)
	}
	if snapshot["q1"] != "q1b" {
		t.Errorf("snapshot = %v, want the submitted answers", snapshot)
	}

	if len(writer.created) != 1 {
		t.Fatalf("persisted rows = %d, want 1", len(writer.created))
	}
}

func TestCreateReportRequestRejectsUnknownArchetype(t *testing.T) {
	writer := &fakeRequestWriter{}
	svc := newTestRequestService(writer)

	if _, err := svc.Create(context.Background(), ReportRequestInput{
		Name:        "Jordan",
		Email:       "jordan@acme.com",
		ArchetypeID: "z9",
	}); err == nil {
		t.Fatal("expected an error for an unregistered archetype id")
	}
	if len(writer.created) != 0 {
		t.Error("nothing should be persisted for an invalid archetype")
	}
}

func TestCreateReportRequestTokensAreUnique(t *testing.T) {
	writer := &fakeRequestWriter{}
	svc := newTestRequestService(writer)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		req, err := svc.Create(context.Background(), ReportRequestInput{
			Name:        "Jordan",
			Email:       "jordan@acme.com",
			ArchetypeID: "a1",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[req.AccessToken] {
			t.Fatal("duplicate access token issued")
		}
		seen[req.AccessToken] = true
	}
}

package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/V4T54L/brokerdesk/internal/domain/mocks"
)

type staticLeads struct {
	leads []domain.Lead
	err   error
}

func (s staticLeads) List(ctx context.Context) ([]domain.Lead, error) { return s.leads, s.err }

func newTestScheduler(src LeadSource, blobs domain.BlobStore) *Scheduler {
	s := NewScheduler(src, blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC) }
	return s
}

func TestScheduler_RunNow(t *testing.T) {
	blobs := &mocks.MockBlobStore{BaseURL: "http://files.test"}
	s := newTestScheduler(staticLeads{leads: []domain.Lead{{ID: "LEAD-00001", Name: "Asha"}}}, blobs)

	url, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	const key = "backups/leads-2024-05-01T02:00:00Z.json"
	if url != "http://files.test/"+key {
		t.Errorf("unexpected url %s", url)
	}
	var got []domain.Lead
	if err := json.Unmarshal(blobs.Objects[key], &got); err != nil {
		t.Fatalf("backup is not JSON: %v", err)
	}
	if len(got) != 1 || got[0].ID != "LEAD-00001" {
		t.Errorf("unexpected backup contents %+v", got)
	}
}

func TestScheduler_EmptyCollectionIsAnArray(t *testing.T) {
	blobs := &mocks.MockBlobStore{}
	s := newTestScheduler(staticLeads{}, blobs)
	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, data := range blobs.Objects {
		if string(data) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	}
}

func TestScheduler_Errors(t *testing.T) {
	if _, err := newTestScheduler(staticLeads{err: errors.New("store down")}, &mocks.MockBlobStore{}).RunNow(context.Background()); err == nil {
		t.Error("expected list error")
	}
	if _, err := newTestScheduler(staticLeads{}, &mocks.MockBlobStore{PutErr: errors.New("disk full")}).RunNow(context.Background()); err == nil {
		t.Error("expected put error")
	}
}

func TestScheduler_Start(t *testing.T) {
	s := newTestScheduler(staticLeads{}, &mocks.MockBlobStore{})
	if err := s.Start(""); err != nil {
		t.Errorf("empty schedule should disable backups, got %v", err)
	}
	if err := s.Start("not a schedule"); err == nil {
		t.Error("expected invalid schedule to be rejected")
	}
	if err := s.Start("@daily"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}

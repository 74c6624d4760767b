package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/V4T54L/brokerdesk/internal/adapter/pii"
	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/V4T54L/brokerdesk/internal/domain/mocks"
)

func newTestLeadUseCase(kv *mocks.MockKVStore) (*LeadUseCase, *mocks.MockPublisher, *LeadStore) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, m := newTestStore(kv)
	pub := &mocks.MockPublisher{}
	redactor := pii.NewRedactor([]string{"phone_number"}, logger)
	return NewLeadUseCase(store, pub, redactor, logger, m), pub, store
}

func TestLeadUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner is the actor", func(t *testing.T) {
		uc, pub, _ := newTestLeadUseCase(&mocks.MockKVStore{})
		lead, err := uc.Create(ctx, "alice", domain.Lead{Name: " Asha ", Status: "contacted", CreatedBy: "admin"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if lead.CreatedBy != "alice" {
			t.Errorf("expected owner alice, got %q", lead.CreatedBy)
		}
		if lead.Name != "Asha" {
			t.Errorf("expected trimmed name, got %q", lead.Name)
		}
		if lead.Status != domain.StatusContacted {
			t.Errorf("expected canonical status, got %q", lead.Status)
		}
		if len(pub.Events) != 1 || pub.Events[0].Type != domain.LeadCreated {
			t.Errorf("expected one created event, got %+v", pub.Events)
		}
	})

	t.Run("Invalid leads are rejected", func(t *testing.T) {
		kv := &mocks.MockKVStore{}
		uc, pub, _ := newTestLeadUseCase(kv)
		for _, l := range []domain.Lead{{Name: ""}, {Name: "X", Status: "Lost"}} {
			if _, err := uc.Create(ctx, "alice", l); !errors.Is(err, domain.ErrInvalidLead) {
				t.Errorf("expected ErrInvalidLead for %+v, got %v", l, err)
			}
		}
		if kv.Puts != 0 || len(pub.Events) != 0 {
			t.Error("rejected leads must not be stored or published")
		}
	})

	t.Run("Backend failure", func(t *testing.T) {
		uc, pub, _ := newTestLeadUseCase(&mocks.MockKVStore{PutErr: errors.New("redis down")})
		if _, err := uc.Create(ctx, "alice", domain.Lead{Name: "A"}); err == nil {
			t.Fatal("expected an error, got nil")
		}
		if len(pub.Events) != 0 {
			t.Error("failed writes must not be published")
		}
	})
}

func TestLeadUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		wantErr error
	}{
		{name: "Owner", actor: "alice", wantErr: nil},
		{name: "Admin", actor: domain.AdminUser, wantErr: nil},
		{name: "Other broker", actor: "bob", wantErr: domain.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := &mocks.MockKVStore{}
			uc, pub, store := newTestLeadUseCase(kv)
			lead, _ := uc.Create(ctx, "alice", domain.Lead{Name: "A"})
			puts := kv.Puts

			err := uc.Delete(ctx, tt.actor, lead.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			leads, _ := store.List(ctx)
			if tt.wantErr != nil {
				if len(leads) != 1 || kv.Puts != puts {
					t.Error("a denied delete must not change the store")
				}
				if len(pub.Events) != 1 {
					t.Error("a denied delete must not be published")
				}
				return
			}
			if len(leads) != 0 {
				t.Errorf("expected lead to be removed, %d left", len(leads))
			}
			if pub.Events[len(pub.Events)-1].Type != domain.LeadDeleted {
				t.Error("expected a deleted event")
			}
		})
	}

	t.Run("Unknown id", func(t *testing.T) {
		uc, _, _ := newTestLeadUseCase(&mocks.MockKVStore{})
		if err := uc.Delete(ctx, "alice", "LEAD-00042"); !errors.Is(err, domain.ErrLeadNotFound) {
			t.Errorf("expected ErrLeadNotFound, got %v", err)
		}
	})

	t.Run("Denial is counted", func(t *testing.T) {
		uc, _, _ := newTestLeadUseCase(&mocks.MockKVStore{})
		lead, _ := uc.Create(ctx, "alice", domain.Lead{Name: "A"})
		uc.Delete(ctx, "bob", lead.ID)
		if got := testutil.ToFloat64(uc.metrics.PermissionDenials.WithLabelValues("delete")); got != 1 {
			t.Errorf("expected 1 denial, got %v", got)
		}
	})
}

func TestLeadUseCase_Update(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestLeadUseCase(&mocks.MockKVStore{})
	lead, _ := uc.Create(ctx, "alice", domain.Lead{Name: "A", Price: "100"})

	if _, err := uc.Update(ctx, "bob", lead.ID, domain.Lead{Name: "B"}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	updated, err := uc.Update(ctx, "alice", lead.ID, domain.Lead{Name: "A", Price: "250", Status: "Visit Scheduled"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.ID != lead.ID || updated.CreatedBy != "alice" || updated.Price != "250" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if _, err := uc.Update(ctx, domain.AdminUser, lead.ID, domain.Lead{Name: "A", Status: "Closed"}); err != nil {
		t.Errorf("expected admin to be allowed, got %v", err)
	}
	if _, err := uc.Update(ctx, "alice", "missing", domain.Lead{Name: "A"}); !errors.Is(err, domain.ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestLeadUseCase_ListAndStats(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestLeadUseCase(&mocks.MockKVStore{})
	uc.Create(ctx, "alice", domain.Lead{Name: "A", Price: "500000"})
	uc.Create(ctx, "bob", domain.Lead{Name: "B", Price: "1500000", Status: "Contacted"})
	uc.Create(ctx, "alice", domain.Lead{Name: "C", Price: "2500000", Status: "Closed"})
	uc.Create(ctx, "alice", domain.Lead{Name: "D", Price: "bad"})

	lo, hi := 1000000.0, 2000000.0
	leads, err := uc.List(ctx, domain.LeadFilter{Status: domain.StatusAll, MinPrice: &lo, MaxPrice: &hi})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(leads) != 1 || leads[0].Name != "B" {
		t.Errorf("expected only lead B, got %+v", leads)
	}

	all, _ := uc.List(ctx, domain.LeadFilter{Status: domain.StatusAll})
	if len(all) != 4 || all[0].Name != "D" || all[3].Name != "A" {
		t.Errorf("expected all leads newest first, got %+v", all)
	}

	stats, err := uc.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stats.Total != 4 || stats.Mine != 3 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if stats.ByStatus[domain.StatusNew] != 2 || stats.ByStatus[domain.StatusVisitScheduled] != 0 {
		t.Errorf("unexpected status counts: %+v", stats.ByStatus)
	}
	if stats.Pipeline != 4500000 {
		t.Errorf("expected pipeline 4500000, got %v", stats.Pipeline)
	}
}

func TestLeadUseCase_DeletedIDIsNotReassigned(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestLeadUseCase(&mocks.MockKVStore{})

	uc.Create(ctx, "carol", domain.Lead{Name: "A"})
	b, _ := uc.Create(ctx, "alice", domain.Lead{Name: "B"})
	if err := uc.Delete(ctx, "alice", b.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	c, err := uc.Create(ctx, "bob", domain.Lead{Name: "C"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.ID == b.ID {
		t.Fatalf("id %s of alice's deleted lead was issued to bob's new lead", b.ID)
	}

	// A stale update from alice must not land on bob's lead.
	if _, err := uc.Update(ctx, "alice", b.ID, domain.Lead{Name: "B2"}); !errors.Is(err, domain.ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
	got, _ := uc.Get(ctx, c.ID)
	if got.Name != "C" || got.CreatedBy != "bob" {
		t.Errorf("bob's lead was modified: %+v", got)
	}
}

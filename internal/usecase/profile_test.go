package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/V4T54L/brokerdesk/internal/domain/mocks"
)

func TestProfileUseCase(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Missing profile is empty", func(t *testing.T) {
		uc := NewProfileUseCase(&mocks.MockKVStore{}, logger)
		p, err := uc.Get(ctx, "alice")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Username != "alice" || p.FullName != "" {
			t.Errorf("unexpected profile: %+v", p)
		}
	})

	t.Run("Update then get", func(t *testing.T) {
		kv := &mocks.MockKVStore{}
		uc := NewProfileUseCase(kv, logger)
		saved, err := uc.Update(ctx, "alice", domain.Profile{Username: "mallory", FullName: " Alice B "})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if saved.Username != "alice" {
			t.Errorf("username must come from the caller, got %q", saved.Username)
		}
		if _, ok := kv.Data[domain.ProfileKey("alice")]; !ok {
			t.Error("expected the profile under its own key")
		}
		if _, ok := kv.Data[domain.ProfileKey("mallory")]; ok {
			t.Error("must not write another user's profile")
		}

		p, _ := uc.Get(ctx, "alice")
		if p.FullName != "Alice B" || p.UpdatedAt.IsZero() {
			t.Errorf("unexpected profile: %+v", p)
		}
	})

	t.Run("Backend failure", func(t *testing.T) {
		uc := NewProfileUseCase(&mocks.MockKVStore{GetErr: errors.New("timeout"), PutErr: errors.New("timeout")}, logger)
		if _, err := uc.Get(ctx, "alice"); err == nil {
			t.Error("expected an error from Get")
		}
		if _, err := uc.Update(ctx, "alice", domain.Profile{}); err == nil {
			t.Error("expected an error from Update")
		}
	})
}

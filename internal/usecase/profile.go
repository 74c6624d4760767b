package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/V4T54L/brokerdesk/internal/domain"
)

// ProfileUseCase reads and writes broker profiles, one key per username.
type ProfileUseCase struct {
	kv     domain.KVStore
	logger *slog.Logger
}

// NewProfileUseCase creates a new ProfileUseCase.
func NewProfileUseCase(kv domain.KVStore, logger *slog.Logger) *ProfileUseCase {
	return &ProfileUseCase{kv: kv, logger: logger}
}

// Get returns username's profile. A user who never saved one gets an empty profile.
func (uc *ProfileUseCase) Get(ctx context.Context, username string) (domain.Profile, error) {
	payload, err := uc.kv.Get(ctx, domain.ProfileKey(username))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{Username: username}, nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	var p domain.Profile
	if err := json.Unmarshal(payload, &p); err != nil {
		return domain.Profile{}, fmt.Errorf("failed to decode profile of %s: %w", username, err)
	}
	p.Username = username
	return p, nil
}

// Update overwrites username's profile. The username always comes from the caller's identity.
func (uc *ProfileUseCase) Update(ctx context.Context, username string, p domain.Profile) (domain.Profile, error) {
	p.Username = username
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(p)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := uc.kv.Put(ctx, domain.ProfileKey(username), payload); err != nil {
		uc.logger.Error("failed to save profile", "error", err, "username", username)
		return domain.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

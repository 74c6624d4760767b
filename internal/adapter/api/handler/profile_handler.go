package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/V4T54L/brokerdesk/internal/adapter/api/middleware"
	"github.com/V4T54L/brokerdesk/internal/domain"
)

// ProfileService is the profile behaviour the HTTP layer depends on.
type ProfileService interface {
	Get(ctx context.Context, username string) (domain.Profile, error)
	Update(ctx context.Context, username string, p domain.Profile) (domain.Profile, error)
}

// ProfileHandler serves the acting user's own profile.
type ProfileHandler struct {
	uc     ProfileService
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(uc ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, logger: logger}
}

// Get handles GET /api/auth/profile/
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	p, err := h.uc.Get(r.Context(), actor)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, p)
}

// Update handles PUT /api/auth/profile/
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p domain.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	actor, _ := middleware.ActorFromContext(r.Context())

	saved, err := h.uc.Update(r.Context(), actor, p)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, saved)
}

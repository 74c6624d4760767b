package handler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/V4T54L/brokerdesk/internal/adapter/api/middleware"
	"github.com/V4T54L/brokerdesk/internal/domain"
)

// LeadService is the lead behaviour the HTTP layer depends on.
type LeadService interface {
	List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error)
	Get(ctx context.Context, id string) (domain.Lead, error)
	Create(ctx context.Context, actor string, lead domain.Lead) (domain.Lead, error)
	Update(ctx context.Context, actor, id string, lead domain.Lead) (domain.Lead, error)
	Delete(ctx context.Context, actor, id string) error
	Stats(ctx context.Context, actor string) (domain.LeadStats, error)
}

// LeadHandler handles HTTP requests for the shared lead collection.
type LeadHandler struct {
	uc     LeadService
	logger *slog.Logger
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(uc LeadService, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{uc: uc, logger: logger}
}

// List handles GET /api/leads/?location=&status=&min_price=&max_price=
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}

	leads, err := h.uc.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, leads)
}

// Get handles GET /api/leads/{id}/
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.uc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, lead)
}

// Create handles POST /api/leads/
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var lead domain.Lead
	if !decodeJSON(w, r, &lead) {
		return
	}
	actor, _ := middleware.ActorFromContext(r.Context())

	created, err := h.uc.Create(r.Context(), actor, lead)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, created)
}

// Update handles PUT /api/leads/{id}/
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var lead domain.Lead
	if !decodeJSON(w, r, &lead) {
		return
	}
	actor, _ := middleware.ActorFromContext(r.Context())

	updated, err := h.uc.Update(r.Context(), actor, r.PathValue("id"), lead)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, updated)
}

// Delete handles DELETE /api/leads/{id}/
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	if err := h.uc.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/leads/stats/
func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	stats, err := h.uc.Stats(r.Context(), actor)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, stats)
}

func parseFilter(q url.Values) (domain.LeadFilter, error) {
	filter := domain.LeadFilter{
		Location: q.Get("location"),
		Status:   q.Get("status"),
	}
	var err error
	if filter.MinPrice, err = parseBound(q, "min_price"); err != nil {
		return domain.LeadFilter{}, err
	}
	if filter.MaxPrice, err = parseBound(q, "max_price"); err != nil {
		return domain.LeadFilter{}, err
	}
	return filter, nil
}

// parseBound treats an empty parameter as "no bound".
func parseBound(q url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &v, nil
}

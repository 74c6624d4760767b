package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/brokerdesk/internal/adapter/api/handler"
	"github.com/V4T54L/brokerdesk/internal/adapter/api/middleware"
	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/V4T54L/brokerdesk/internal/pkg/config"
)

// NewRouter creates and configures the main HTTP router for the portal.
// files serves stored blobs under /files/ and may be nil when blobs live elsewhere.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	resolver domain.IdentityResolver,
	leads handler.LeadService,
	profiles handler.ProfileService,
	uploads handler.UploadService,
	events http.Handler,
	files http.Handler,
) http.Handler {
	leadHandler := handler.NewLeadHandler(leads, logger)
	profileHandler := handler.NewProfileHandler(profiles, logger)
	uploadHandler := handler.NewUploadHandler(uploads, logger, cfg.UploadMaxBytes)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/leads/{$}", leadHandler.List)
	api.HandleFunc("POST /api/leads/{$}", leadHandler.Create)
	api.HandleFunc("GET /api/leads/stats/{$}", leadHandler.Stats)
	api.Handle("GET /api/leads/events/{$}", events)
	api.HandleFunc("GET /api/leads/{id}/{$}", leadHandler.Get)
	api.HandleFunc("PUT /api/leads/{id}/{$}", leadHandler.Update)
	api.HandleFunc("DELETE /api/leads/{id}/{$}", leadHandler.Delete)
	api.HandleFunc("GET /api/auth/profile/{$}", profileHandler.Get)
	api.HandleFunc("PUT /api/auth/profile/{$}", profileHandler.Update)
	api.HandleFunc("POST /api/uploads/{$}", uploadHandler.Upload)

	authMiddleware := middleware.Auth(resolver, logger)
	rateLimit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", rateLimit(authMiddleware(api)))
	if files != nil {
		mux.Handle("GET /files/", http.StripPrefix("/files/", files))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return middleware.Logging(logger)(mux)
}

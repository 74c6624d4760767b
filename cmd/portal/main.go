package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/V4T54L/brokerdesk/internal/adapter/api"
	"github.com/V4T54L/brokerdesk/internal/adapter/api/handler"
	"github.com/V4T54L/brokerdesk/internal/adapter/backup"
	fsblob "github.com/V4T54L/brokerdesk/internal/adapter/blob/fs"
	s3blob "github.com/V4T54L/brokerdesk/internal/adapter/blob/s3"
	"github.com/V4T54L/brokerdesk/internal/adapter/metrics"
	"github.com/V4T54L/brokerdesk/internal/adapter/pii"
	"github.com/V4T54L/brokerdesk/internal/adapter/repository"
	"github.com/V4T54L/brokerdesk/internal/adapter/repository/memory"
	"github.com/V4T54L/brokerdesk/internal/adapter/repository/postgres"
	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/V4T54L/brokerdesk/internal/pkg/config"
	"github.com/V4T54L/brokerdesk/internal/pkg/logger"
	"github.com/V4T54L/brokerdesk/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewPortalMetrics(prometheus.DefaultRegisterer)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Lead Store Backend ---
	backend, err := repository.OpenKVStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open lead store backend", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer backend.Close()

	ids, err := domain.NewIDGenerator(cfg.LeadIDStrategy, cfg.LeadIDPrefix)
	if err != nil {
		logger.Error("invalid lead id configuration", "error", err)
		os.Exit(1)
	}

	// --- Identity ---
	var resolver domain.IdentityResolver
	switch cfg.IdentityDriver {
	case "postgres":
		db, err := repository.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Error("failed to connect to identity database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		resolver = postgres.NewIdentityRepository(db, logger, cfg.APIKeyCacheTTL, m)
	case "", "static":
		keys := cfg.APIKeys
		if len(keys) == 0 {
			logger.Warn("API_KEYS is empty, every /api/ request will be rejected")
		}
		resolver = memory.NewIdentityResolver(keys)
	default:
		logger.Error("unknown identity driver", "driver", cfg.IdentityDriver)
		os.Exit(1)
	}

	// --- Blob Storage ---
	var blobs domain.BlobStore
	var files http.Handler
	switch cfg.BlobDriver {
	case "s3":
		store, err := s3blob.New(ctx, s3blob.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PathStyle:       cfg.S3PathStyle,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize s3 blob store", "error", err)
			os.Exit(1)
		}
		blobs = store
	case "", "fs":
		store, err := fsblob.New(cfg.BlobDir, cfg.BlobPublicBaseURL)
		if err != nil {
			logger.Error("failed to initialize blob directory", "error", err)
			os.Exit(1)
		}
		blobs = store
		files = http.FileServer(http.Dir(store.Root()))
	default:
		logger.Error("unknown blob driver", "driver", cfg.BlobDriver)
		os.Exit(1)
	}

	// --- Use Cases ---
	leadStore := usecase.NewLeadStore(backend.KV, cfg.LeadStoreKey, ids, logger, m)
	if _, err := leadStore.Load(ctx); err != nil {
		logger.Error("failed to load lead collection", "error", err)
		os.Exit(1)
	}

	events := handler.NewLeadEventBroker(ctx, logger)
	redactor := pii.NewRedactor(cfg.PIIRedactionFields, logger)
	leadUseCase := usecase.NewLeadUseCase(leadStore, events, redactor, logger, m)
	profileUseCase := usecase.NewProfileUseCase(backend.KV, logger)
	uploadUseCase := usecase.NewUploadUseCase(blobs, cfg.UploadMaxBytes, logger, m)

	// --- Backups ---
	backups := backup.NewScheduler(leadStore, blobs, logger)
	if err := backups.Start(cfg.BackupCron); err != nil {
		logger.Error("failed to start backup scheduler", "error", err)
		os.Exit(1)
	}
	defer backups.Stop()

	// --- Start Admin and Metrics Server ---
	adminServer := &http.Server{
		Addr: cfg.AdminServerAddr,
		Handler: api.NewAdminRouter(prometheus.DefaultGatherer, map[string]handler.HealthCheck{
			"store": backend.Ping,
		}, logger),
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Portal Server ---
	router := api.NewRouter(cfg, logger, resolver, leadUseCase, profileUseCase, uploadUseCase, events, files)
	apiServer := &http.Server{
		Addr:        cfg.APIServerAddr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the event stream stays open for the life of the dashboard.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("starting portal server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("portal server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("portal server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}

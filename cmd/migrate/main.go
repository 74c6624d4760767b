package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/V4T54L/brokerdesk/internal/adapter/repository"
	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/V4T54L/brokerdesk/internal/pkg/config"
	"github.com/V4T54L/brokerdesk/internal/pkg/logger"
	"github.com/V4T54L/brokerdesk/internal/usecase"
)

// migrate imports a legacy browser-storage dump (a JSON array of leads) into the
// configured store, or, with no input, just normalizes what is already stored.
func main() {
	input := flag.String("file", "", "legacy JSON dump to import; '-' reads stdin, empty only normalizes the stored collection")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting lead migration", "driver", cfg.StoreDriver, "key", cfg.LeadStoreKey)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := repository.OpenKVStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open lead store backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	ids, err := domain.NewIDGenerator(cfg.LeadIDStrategy, cfg.LeadIDPrefix)
	if err != nil {
		log.Error("invalid lead id configuration", "error", err)
		os.Exit(1)
	}
	store := usecase.NewLeadStore(backend.KV, cfg.LeadStoreKey, ids, log, nil)

	if *input == "" {
		// Load migrates and persists legacy records on its own.
		leads, err := store.Load(ctx)
		if err != nil {
			log.Error("failed to load lead collection", "error", err)
			os.Exit(1)
		}
		log.Info("stored collection normalized", "leads", len(leads))
		return
	}

	var r io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			log.Error("failed to open legacy dump", "error", err, "file", *input)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	report, err := usecase.NewMigrateUseCase(store, log).Import(ctx, r)
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error("failed to write report", "error", err)
	}
}

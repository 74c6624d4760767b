package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/robfig/cron/v3"
)

// LeadSource yields the collection to back up.
type LeadSource interface {
	List(ctx context.Context) ([]domain.Lead, error)
}

// Scheduler periodically writes the whole lead collection to the blob store
// under backups/leads-<RFC3339>.json.
type Scheduler struct {
	cron   *cron.Cron
	leads  LeadSource
	blobs  domain.BlobStore
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new backup scheduler.
func NewScheduler(leads LeadSource, blobs domain.BlobStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		leads:  leads,
		blobs:  blobs,
		logger: logger.With("component", "backup_scheduler"),
		now:    time.Now,
	}
}

// Start registers the backup job on spec (standard five-field cron syntax or
// descriptors such as "@daily") and starts the scheduler. An empty spec disables backups.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.logger.Info("backups are disabled")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.RunNow(ctx); err != nil {
			s.logger.Error("scheduled backup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("backup scheduler started", "schedule", spec)
	return nil
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.logger.Info("backup scheduler stopped")
	}
}

// RunNow writes one backup immediately and returns its URL.
func (s *Scheduler) RunNow(ctx context.Context) (string, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read leads for backup: %w", err)
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	payload, err := json.Marshal(leads)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}

	key := "backups/leads-" + s.now().UTC().Format(time.RFC3339) + ".json"
	url, size, err := s.blobs.Put(ctx, key, bytes.NewReader(payload), "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to store backup %s: %w", key, err)
	}
	s.logger.Info("backup written", "key", key, "leads", len(leads), "bytes", size)
	return url, nil
}

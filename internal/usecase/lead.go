package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/V4T54L/brokerdesk/internal/adapter/metrics"
	"github.com/V4T54L/brokerdesk/internal/adapter/pii"
	"github.com/V4T54L/brokerdesk/internal/domain"
)

// LeadUseCase handles the business logic around the shared lead collection:
// ownership checks, filtering, change notifications and stats.
type LeadUseCase struct {
	store     *LeadStore
	publisher domain.LeadEventPublisher
	redactor  *pii.Redactor
	logger    *slog.Logger
	metrics   *metrics.PortalMetrics
}

// NewLeadUseCase creates a new LeadUseCase. publisher and m may be nil.
func NewLeadUseCase(store *LeadStore, publisher domain.LeadEventPublisher, redactor *pii.Redactor, logger *slog.Logger, m *metrics.PortalMetrics) *LeadUseCase {
	return &LeadUseCase{
		store:     store,
		publisher: publisher,
		redactor:  redactor,
		logger:    logger.With("component", "lead_usecase"),
		metrics:   m,
	}
}

// List returns the leads matching filter, newest first.
func (uc *LeadUseCase) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	leads, err := uc.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterLeads(leads, filter), nil
}

// Get returns a single lead.
func (uc *LeadUseCase) Get(ctx context.Context, id string) (domain.Lead, error) {
	return uc.store.Get(ctx, id)
}

// Create validates lead and adds it with actor as its owner.
func (uc *LeadUseCase) Create(ctx context.Context, actor string, lead domain.Lead) (domain.Lead, error) {
	if err := normalize(&lead); err != nil {
		uc.count("create", "invalid")
		return domain.Lead{}, err
	}

	created, err := uc.store.Add(ctx, lead, actor)
	if err != nil {
		uc.count("create", "error")
		uc.logger.Error("failed to add lead", "error", err, "actor", actor)
		return domain.Lead{}, err
	}

	uc.count("create", "ok")
	uc.logger.Info("lead created", "actor", actor, "lead", uc.redactor.Redact(created))
	uc.publish(domain.LeadCreated, created, actor)
	return created, nil
}

// Update replaces the editable fields of lead id. Only the owner or the admin may do so.
func (uc *LeadUseCase) Update(ctx context.Context, actor, id string, lead domain.Lead) (domain.Lead, error) {
	current, err := uc.store.Get(ctx, id)
	if err != nil {
		uc.count("update", outcome(err))
		return domain.Lead{}, err
	}
	if err := uc.authorize("update", actor, current); err != nil {
		return domain.Lead{}, err
	}
	if err := normalize(&lead); err != nil {
		uc.count("update", "invalid")
		return domain.Lead{}, err
	}

	lead.ID = id
	// The owner is checked again under the store lock in case the lead changed
	// since the lookup.
	updated, err := uc.store.Update(ctx, lead, func(stored domain.Lead) error {
		return uc.authorize("update", actor, stored)
	})
	if errors.Is(err, domain.ErrPermissionDenied) {
		return domain.Lead{}, err
	}
	if err != nil {
		uc.count("update", outcome(err))
		uc.logger.Error("failed to update lead", "error", err, "lead_id", id, "actor", actor)
		return domain.Lead{}, err
	}

	uc.count("update", "ok")
	uc.logger.Info("lead updated", "actor", actor, "lead", uc.redactor.Redact(updated))
	uc.publish(domain.LeadUpdated, updated, actor)
	return updated, nil
}

// Delete removes lead id. Only the owner or the admin may do so; a denial leaves the
// store untouched.
func (uc *LeadUseCase) Delete(ctx context.Context, actor, id string) error {
	current, err := uc.store.Get(ctx, id)
	if err != nil {
		uc.count("delete", outcome(err))
		return err
	}
	if err := uc.authorize("delete", actor, current); err != nil {
		return err
	}

	removed, err := uc.store.Remove(ctx, id, func(stored domain.Lead) error {
		current = stored
		return uc.authorize("delete", actor, stored)
	})
	if errors.Is(err, domain.ErrPermissionDenied) {
		return err
	}
	if err != nil {
		uc.count("delete", "error")
		uc.logger.Error("failed to remove lead", "error", err, "lead_id", id, "actor", actor)
		return err
	}
	if !removed {
		// Deleted concurrently between the lookup and the removal.
		uc.count("delete", "not_found")
		return domain.ErrLeadNotFound
	}

	uc.count("delete", "ok")
	uc.logger.Info("lead deleted", "actor", actor, "lead_id", id, "owner", current.CreatedBy)
	uc.publish(domain.LeadDeleted, current, actor)
	return nil
}

// Stats summarises the whole collection as seen by actor.
func (uc *LeadUseCase) Stats(ctx context.Context, actor string) (domain.LeadStats, error) {
	leads, err := uc.store.List(ctx)
	if err != nil {
		return domain.LeadStats{}, err
	}

	stats := domain.LeadStats{
		Total:    len(leads),
		ByStatus: make(map[domain.LeadStatus]int, len(domain.Statuses)),
	}
	for _, st := range domain.Statuses {
		stats.ByStatus[st] = 0
	}
	for _, l := range leads {
		if l.CreatedBy == actor {
			stats.Mine++
		}
		if l.Status.Valid() {
			stats.ByStatus[l.Status]++
		} else {
			stats.Unknown++
		}
		if p := l.PriceValue(); !math.IsNaN(p) {
			stats.Pipeline += p
		}
	}
	return stats, nil
}

func (uc *LeadUseCase) authorize(op, actor string, lead domain.Lead) error {
	if domain.CanMutate(actor, lead.CreatedBy) {
		return nil
	}
	uc.count(op, "denied")
	if uc.metrics != nil {
		uc.metrics.PermissionDenials.WithLabelValues(op).Inc()
	}
	uc.logger.Warn("lead mutation denied", "op", op, "actor", actor, "lead_id", lead.ID, "owner", lead.CreatedBy)
	return fmt.Errorf("%w: only %s or %s can %s lead %s", domain.ErrPermissionDenied, lead.CreatedBy, domain.AdminUser, op, lead.ID)
}

func (uc *LeadUseCase) publish(t domain.LeadEventType, lead domain.Lead, actor string) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.Publish(domain.LeadEvent{Type: t, Lead: lead, Actor: actor, At: time.Now().UTC()})
}

func (uc *LeadUseCase) count(op, result string) {
	if uc.metrics != nil {
		uc.metrics.LeadMutations.WithLabelValues(op, result).Inc()
	}
}

func outcome(err error) string {
	if errors.Is(err, domain.ErrLeadNotFound) {
		return "not_found"
	}
	return "error"
}

// normalize trims input, maps the status onto the canonical vocabulary and
// rejects leads that cannot be stored.
func normalize(l *domain.Lead) error {
	l.Name = strings.TrimSpace(l.Name)
	l.PhoneNumber = strings.TrimSpace(l.PhoneNumber)
	l.Address = strings.TrimSpace(l.Address)
	l.PreferredLocation = strings.TrimSpace(l.PreferredLocation)
	l.Price = domain.LooseString(strings.TrimSpace(string(l.Price)))

	if l.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidLead)
	}

	if l.Status == "" {
		l.Status = domain.StatusNew
	} else {
		st, ok := domain.ParseLeadStatus(string(l.Status))
		if !ok {
			return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidLead, l.Status)
		}
		l.Status = st
	}

	files := l.Files[:0]
	for _, f := range l.Files {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	l.Files = files
	if len(l.Files) == 0 {
		l.Files = nil
	}
	return nil
}

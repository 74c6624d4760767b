package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/V4T54L/brokerdesk/internal/adapter/metrics"
	"github.com/V4T54L/brokerdesk/internal/domain"
)

// LeadStore owns the shared lead collection, newest first, and persists the whole
// collection as one JSON document under a single key after every mutation.
// The last issued id is kept under "<key>.seq" so ids are never reissued, even
// after the newest lead is deleted.
//
// Mutations inside one process are serialized. Separate processes writing the same
// key are not coordinated: the last write wins.
type LeadStore struct {
	kv      domain.KVStore
	key     string
	ids     domain.IDGenerator
	logger  *slog.Logger
	metrics *metrics.PortalMetrics
	now     func() time.Time

	mu          sync.Mutex
	leads       []domain.Lead
	loaded      bool
	lastID      string
	savedLastID string
}

// NewLeadStore creates a LeadStore over kv. metrics may be nil.
func NewLeadStore(kv domain.KVStore, key string, ids domain.IDGenerator, logger *slog.Logger, m *metrics.PortalMetrics) *LeadStore {
	return &LeadStore{
		kv:      kv,
		key:     key,
		ids:     ids,
		logger:  logger.With("component", "lead_store"),
		metrics: m,
		now:     time.Now,
	}
}

// Load re-reads the persisted collection and returns a copy of it.
// A missing key yields an empty collection. So does a malformed payload, which is
// first copied aside under "<key>.corrupt" so the next write cannot destroy it.
func (s *LeadStore) Load(ctx context.Context) ([]domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return cloneLeads(s.leads), nil
}

// List returns a copy of the collection, loading it on first use.
func (s *LeadStore) List(ctx context.Context) ([]domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return cloneLeads(s.leads), nil
}

// Get returns the lead with the given id or domain.ErrLeadNotFound.
func (s *LeadStore) Get(ctx context.Context, id string) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Lead{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	return s.leads[i].Clone(), nil
}

// Add assigns a fresh id, stamps owner as the creator and prepends the lead.
func (s *LeadStore) Add(ctx context.Context, lead domain.Lead, owner string) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Lead{}, err
	}

	lead = lead.Clone()
	lead.ID = s.nextID(s.leads)
	lead.CreatedBy = owner
	lead.CreatedAt = s.now().UTC()
	lead.UpdatedAt = lead.CreatedAt
	if lead.Status == "" {
		lead.Status = domain.StatusNew
	}

	next := make([]domain.Lead, 0, len(s.leads)+1)
	next = append(next, lead)
	next = append(next, s.leads...)
	if err := s.commit(ctx, next); err != nil {
		return domain.Lead{}, err
	}
	return lead.Clone(), nil
}

// Update replaces the stored lead with the same id. The id, owner and creation
// time of the stored record are kept. guard, when not nil, sees the stored record
// under the store lock and can veto the update.
func (s *LeadStore) Update(ctx context.Context, lead domain.Lead, guard func(current domain.Lead) error) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Lead{}, err
	}
	i := s.indexOf(lead.ID)
	if i < 0 {
		return domain.Lead{}, domain.ErrLeadNotFound
	}

	current := s.leads[i]
	if guard != nil {
		if err := guard(current.Clone()); err != nil {
			return domain.Lead{}, err
		}
	}
	lead = lead.Clone()
	lead.CreatedBy = current.CreatedBy
	lead.CreatedAt = current.CreatedAt
	lead.UpdatedAt = s.now().UTC()

	next := cloneLeads(s.leads)
	next[i] = lead
	if err := s.commit(ctx, next); err != nil {
		return domain.Lead{}, err
	}
	return lead.Clone(), nil
}

// Remove deletes the lead with the given id. Removing an unknown id is a no-op
// and does not touch the backend. guard works as in Update.
func (s *LeadStore) Remove(ctx context.Context, id string, guard func(current domain.Lead) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	if guard != nil {
		if err := guard(s.leads[i].Clone()); err != nil {
			return false, err
		}
	}

	next := make([]domain.Lead, 0, len(s.leads)-1)
	next = append(next, s.leads[:i]...)
	next = append(next, s.leads[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Import re-reads the collection and appends imported behind it, then migrates the
// result. A record is skipped when a stored lead has the same id and owner, or the
// same owner, name, phone number and address (a record renumbered by an earlier
// import of the same dump).
func (s *LeadStore) Import(ctx context.Context, imported []domain.Lead) (MigrationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return MigrationReport{}, err
	}

	byID := make(map[[2]string]bool, len(s.leads))
	byContent := make(map[[4]string]bool, len(s.leads))
	for _, l := range s.leads {
		byID[[2]string{l.ID, l.CreatedBy}] = true
		byContent[contentKey(l)] = true
	}

	merged := cloneLeads(s.leads)
	skipped := 0
	for _, l := range imported {
		if (l.ID != "" && byID[[2]string{l.ID, l.CreatedBy}]) || byContent[contentKey(l)] {
			skipped++
			continue
		}
		merged = append(merged, l.Clone())
	}

	report := MigrateLeads(merged, s.nextID)
	report.Imported = len(imported) - skipped
	report.Skipped = skipped
	if report.Imported == 0 && !report.Changed() {
		return report, nil
	}
	if err := s.commit(ctx, merged); err != nil {
		return report, err
	}
	return report, nil
}

// nextID issues a fresh id and records it as the high-water mark. The mark is
// written on the next persist.
func (s *LeadStore) nextID(existing []domain.Lead) string {
	id := s.ids.Next(existing, s.lastID)
	s.lastID = id
	return id
}

func (s *LeadStore) seqKey() string {
	return s.key + ".seq"
}

func (s *LeadStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *LeadStore) load(ctx context.Context) error {
	seq, err := s.kv.Get(ctx, s.seqKey())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.lastID = ""
	case err != nil:
		return fmt.Errorf("failed to read lead id sequence: %w", err)
	default:
		s.lastID = string(seq)
	}
	s.savedLastID = s.lastID

	payload, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		s.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lead collection: %w", err)
	}

	var leads []domain.Lead
	if err := json.Unmarshal(payload, &leads); err != nil {
		s.logger.Error("lead collection is malformed, starting from an empty collection", "error", err, "key", s.key, "bytes", len(payload))
		if s.metrics != nil {
			s.metrics.SnapshotLoadFailures.Inc()
		}
		if err := s.kv.Put(ctx, s.key+".corrupt", payload); err != nil {
			return fmt.Errorf("failed to preserve malformed lead collection: %w", err)
		}
		s.set(nil)
		return nil
	}

	report := MigrateLeads(leads, s.nextID)
	if report.Changed() {
		s.logger.Info("migrated legacy lead records",
			"normalized_status", report.NormalizedStatus,
			"assigned_ids", report.AssignedIDs,
			"filled_status", report.FilledStatus,
		)
		if err := s.persist(ctx, leads); err != nil {
			return err
		}
	}
	for _, id := range report.UnknownStatus {
		s.logger.Warn("lead has a status outside the known vocabulary", "lead_id", id)
	}

	s.set(leads)
	return nil
}

// commit persists next and only then swaps it in, so a failed write leaves the
// in-memory collection unchanged.
func (s *LeadStore) commit(ctx context.Context, next []domain.Lead) error {
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.set(next)
	return nil
}

func (s *LeadStore) persist(ctx context.Context, leads []domain.Lead) error {
	if leads == nil {
		leads = []domain.Lead{}
	}
	payload, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("failed to encode lead collection: %w", err)
	}
	// The sequence goes first: a crash between the two writes only skips an id.
	if s.lastID != s.savedLastID {
		if err := s.kv.Put(ctx, s.seqKey(), []byte(s.lastID)); err != nil {
			return fmt.Errorf("failed to write lead id sequence: %w", err)
		}
		s.savedLastID = s.lastID
	}
	if err := s.kv.Put(ctx, s.key, payload); err != nil {
		return fmt.Errorf("failed to write lead collection: %w", err)
	}
	return nil
}

func (s *LeadStore) set(leads []domain.Lead) {
	s.leads = leads
	s.loaded = true
	if s.metrics != nil {
		s.metrics.LeadsStored.Set(float64(len(leads)))
	}
}

func (s *LeadStore) indexOf(id string) int {
	for i, l := range s.leads {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func contentKey(l domain.Lead) [4]string {
	return [4]string{l.CreatedBy, strings.TrimSpace(l.Name), strings.TrimSpace(l.PhoneNumber), strings.TrimSpace(l.Address)}
}

func cloneLeads(leads []domain.Lead) []domain.Lead {
	out := make([]domain.Lead, len(leads))
	for i, l := range leads {
		out[i] = l.Clone()
	}
	return out
}

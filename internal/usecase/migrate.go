package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/V4T54L/brokerdesk/internal/domain"
)

// MigrationReport counts what MigrateLeads had to fix.
type MigrationReport struct {
	Imported         int      `json:"imported"`
	Skipped          int      `json:"skipped"`
	AssignedIDs      int      `json:"assigned_ids"`
	NormalizedStatus int      `json:"normalized_status"`
	FilledStatus     int      `json:"filled_status"`
	UnknownStatus    []string `json:"unknown_status,omitempty"`
}

// Changed reports whether any record was rewritten.
func (r MigrationReport) Changed() bool {
	return r.AssignedIDs > 0 || r.NormalizedStatus > 0 || r.FilledStatus > 0
}

// MigrateLeads rewrites legacy records in place: missing or duplicated ids get a
// fresh one from next, legacy status spellings are mapped onto the canonical
// vocabulary, and an empty status becomes New. Statuses that cannot be mapped are
// left as they are and reported.
func MigrateLeads(leads []domain.Lead, next func(existing []domain.Lead) string) MigrationReport {
	var report MigrationReport

	seen := make(map[string]bool, len(leads))
	for i := range leads {
		if leads[i].ID == "" || seen[leads[i].ID] {
			leads[i].ID = next(leads)
			report.AssignedIDs++
		}
		seen[leads[i].ID] = true
	}

	for i := range leads {
		l := &leads[i]
		switch {
		case l.Status == "":
			l.Status = domain.StatusNew
			report.FilledStatus++
		case l.Status.Valid():
		default:
			if st, ok := domain.ParseLeadStatus(string(l.Status)); ok {
				l.Status = st
				report.NormalizedStatus++
			} else {
				report.UnknownStatus = append(report.UnknownStatus, l.ID)
			}
		}
	}
	return report
}

// MigrateUseCase imports a legacy browser-storage dump into the shared store.
type MigrateUseCase struct {
	store  *LeadStore
	logger *slog.Logger
}

// NewMigrateUseCase creates a new MigrateUseCase.
func NewMigrateUseCase(store *LeadStore, logger *slog.Logger) *MigrateUseCase {
	return &MigrateUseCase{store: store, logger: logger}
}

// Import reads a JSON array of legacy leads from r and merges it behind the
// leads already in the store. Imported records keep their createdBy. Records
// already present with the same id and owner are skipped, so a dump can be
// imported more than once.
func (uc *MigrateUseCase) Import(ctx context.Context, r io.Reader) (MigrationReport, error) {
	var imported []domain.Lead
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return MigrationReport{}, fmt.Errorf("failed to decode legacy leads: %w", err)
	}

	report, err := uc.store.Import(ctx, imported)
	if err != nil {
		return report, err
	}

	uc.logger.Info("imported legacy leads",
		"imported", report.Imported,
		"skipped", report.Skipped,
		"assigned_ids", report.AssignedIDs,
		"normalized_status", report.NormalizedStatus,
		"unknown_status", len(report.UnknownStatus),
	)
	return report, nil
}

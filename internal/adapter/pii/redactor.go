package pii

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/V4T54L/brokerdesk/internal/domain"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks personal details of a lead before it is written to the logs.
type Redactor struct {
	fieldsToRedact map[string]struct{} // Use a map for O(1) lookups
	logger         *slog.Logger
}

// NewRedactor creates a new Redactor instance with a given set of JSON field names to mask.
func NewRedactor(fields []string, logger *slog.Logger) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			fieldSet[field] = struct{}{}
		}
	}
	return &Redactor{
		fieldsToRedact: fieldSet,
		logger:         logger,
	}
}

// Redact returns the lead as a JSON-shaped map with the configured fields masked.
// Empty fields stay empty so the log still shows they were never filled in.
func (r *Redactor) Redact(lead domain.Lead) map[string]any {
	raw, err := json.Marshal(lead)
	if err != nil {
		r.logger.Warn("failed to marshal lead for PII redaction", "error", err, "lead_id", lead.ID)
		return map[string]any{"id": lead.ID}
	}

	var view map[string]any
	if err := json.Unmarshal(raw, &view); err != nil {
		r.logger.Warn("failed to unmarshal lead for PII redaction", "error", err, "lead_id", lead.ID)
		return map[string]any{"id": lead.ID}
	}

	for field := range r.fieldsToRedact {
		if v, ok := view[field]; ok && v != "" && v != nil {
			view[field] = RedactedPlaceholder
		}
	}
	return view
}

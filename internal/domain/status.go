package domain

import "strings"

// LeadStatus is the closed set of pipeline stages a lead can be in.
type LeadStatus string

const (
	StatusNew            LeadStatus = "New"
	StatusContacted      LeadStatus = "Contacted"
	StatusVisitScheduled LeadStatus = "Visit Scheduled"
	StatusClosed         LeadStatus = "Closed"
)

// StatusAll is the filter sentinel meaning "no status constraint".
const StatusAll = "All"

// Statuses lists the canonical vocabulary in pipeline order.
var Statuses = []LeadStatus{StatusNew, StatusContacted, StatusVisitScheduled, StatusClosed}

var statusAliases = map[string]LeadStatus{
	"new":             StatusNew,
	"contacted":       StatusContacted,
	"visit scheduled": StatusVisitScheduled,
	"visit_scheduled": StatusVisitScheduled,
	"closed":          StatusClosed,
	"converted":       StatusClosed,
}

// ParseLeadStatus maps canonical and legacy spellings onto the canonical vocabulary.
func ParseLeadStatus(s string) (LeadStatus, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Valid reports whether s is one of the canonical statuses.
func (s LeadStatus) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

package domain

import "strings"

// LeadFilter narrows the shared collection. Zero values impose no constraint.
type LeadFilter struct {
	Location string
	Status   string
	MinPrice *float64
	MaxPrice *float64
}

// Matches reports whether the lead satisfies every active criterion of f.
func (f LeadFilter) Matches(l Lead) bool {
	if loc := strings.ToLower(f.Location); loc != "" {
		if !strings.Contains(strings.ToLower(l.Address), loc) &&
			!strings.Contains(strings.ToLower(string(l.Lat)), loc) &&
			!strings.Contains(strings.ToLower(string(l.Lng)), loc) {
			return false
		}
	}

	if f.Status != "" && f.Status != StatusAll {
		want := LeadStatus(f.Status)
		if st, ok := ParseLeadStatus(f.Status); ok {
			want = st
		}
		if l.Status != want {
			return false
		}
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		// NaN fails both comparisons, so an unparsable price is excluded once a bound is set.
		p := l.PriceValue()
		if f.MinPrice != nil && !(p >= *f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && !(p <= *f.MaxPrice) {
			return false
		}
	}
	return true
}

// FilterLeads returns the leads matching f in their original order.
func FilterLeads(leads []Lead, f LeadFilter) []Lead {
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator assigns identifiers to new leads. last is the most recently issued
// id, which may belong to a lead that has since been deleted. Implementations must
// not return an id already present in existing, nor reissue last.
type IDGenerator interface {
	Next(existing []Lead, last string) string
}

// SequentialIDs yields short human-readable codes such as LEAD-00042.
// The next number is one past the highest numeric suffix seen in the store or in
// last, so deleting the newest lead never frees its id.
type SequentialIDs struct {
	Prefix string
}

func (g SequentialIDs) Next(existing []Lead, last string) string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "LEAD"
	}
	highest := g.sequence(prefix, last)
	for _, l := range existing {
		if n := g.sequence(prefix, l.ID); n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%05d", prefix, highest+1)
}

func (SequentialIDs) sequence(prefix, id string) int64 {
	if !strings.HasPrefix(id, prefix) {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimLeft(id[len(prefix):], "-"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// UUIDIDs yields random v4 UUIDs.
type UUIDIDs struct{}

func (UUIDIDs) Next(existing []Lead, last string) string {
	for {
		id := uuid.NewString()
		if id != last && !containsID(existing, id) {
			return id
		}
	}
}

func containsID(leads []Lead, id string) bool {
	for _, l := range leads {
		if l.ID == id {
			return true
		}
	}
	return false
}

// NewIDGenerator returns the generator for strategy "sequence" (the default) or "uuid".
func NewIDGenerator(strategy, prefix string) (IDGenerator, error) {
	switch strings.ToLower(strategy) {
	case "", "sequence":
		return SequentialIDs{Prefix: prefix}, nil
	case "uuid":
		return UUIDIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown lead id strategy %q", strategy)
	}
}

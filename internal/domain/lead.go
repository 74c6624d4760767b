package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Lead represents a prospective client tracked by a broker.
type Lead struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	PhoneNumber       string      `json:"phone_number"`
	Address           string      `json:"address"`
	PreferredLocation string      `json:"preferred_location,omitempty"`
	Price             LooseString `json:"price"`
	Status            LeadStatus  `json:"status"`
	Lat               LooseString `json:"lat,omitempty"`
	Lng               LooseString `json:"lng,omitempty"`
	FileURL           string      `json:"file_url,omitempty"`
	Files             []string    `json:"files,omitempty"`
	CreatedBy         string      `json:"createdBy"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// UnmarshalJSON accepts the legacy "budget" field when "price" is absent.
func (l *Lead) UnmarshalJSON(data []byte) error {
	type plain Lead
	aux := struct {
		*plain
		Budget LooseString `json:"budget"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if l.Price == "" && aux.Budget != "" {
		l.Price = aux.Budget
	}
	return nil
}

// Clone returns a deep copy of the lead.
func (l Lead) Clone() Lead {
	if l.Files != nil {
		l.Files = append([]string(nil), l.Files...)
	}
	return l
}

// PriceValue parses the price. Anything that is not a number yields NaN.
func (l Lead) PriceValue() float64 {
	s := strings.TrimSpace(string(l.Price))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// LooseString holds a value the client may send either as a JSON string or a JSON number.
// The text is kept verbatim so that substring matching sees exactly what was entered.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = LooseString(n.String())
	return nil
}

// LeadEventType names the kind of change applied to the shared store.
type LeadEventType string

const (
	LeadCreated LeadEventType = "created"
	LeadUpdated LeadEventType = "updated"
	LeadDeleted LeadEventType = "deleted"
)

// LeadEvent is published after every successful mutation.
type LeadEvent struct {
	Type  LeadEventType `json:"type"`
	Lead  Lead          `json:"lead"`
	Actor string        `json:"actor"`
	At    time.Time     `json:"at"`
}

// LeadStats summarises the shared collection for the dashboard.
type LeadStats struct {
	Total    int                `json:"total"`
	Mine     int                `json:"mine"`
	ByStatus map[LeadStatus]int `json:"by_status"`
	Unknown  int                `json:"unknown_status"`
	Pipeline float64            `json:"pipeline_value"`
}

package domain

import "testing"

func TestSequentialIDs_Next(t *testing.T) {
	g := SequentialIDs{Prefix: "LEAD"}

	tests := []struct {
		name     string
		existing []Lead
		last     string
		want     string
	}{
		{name: "Empty store", existing: nil, want: "LEAD-00001"},
		{name: "Last issued id was deleted", existing: []Lead{{ID: "LEAD-00001"}}, last: "LEAD-00002", want: "LEAD-00003"},
		{name: "Last issued id below store maximum", existing: []Lead{{ID: "LEAD-00009"}}, last: "LEAD-00004", want: "LEAD-00010"},
		{name: "Last issued id with another prefix", existing: nil, last: "c1d2e3f4-uuid", want: "LEAD-00001"},
		{name: "After highest", existing: []Lead{{ID: "LEAD-00007"}, {ID: "LEAD-00003"}}, want: "LEAD-00008"},
		{name: "Legacy random ids without dash", existing: []Lead{{ID: "LEAD48213"}}, want: "LEAD-48214"},
		{name: "Foreign ids ignored", existing: []Lead{{ID: "abc"}, {ID: "LEAD-x"}}, want: "LEAD-00001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Next(tt.existing, tt.last); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSequentialIDs_Unique(t *testing.T) {
	g := SequentialIDs{}
	var leads []Lead
	var last string
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := g.Next(leads, last)
		last = id
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		leads = append([]Lead{{ID: id}}, leads...)
		if i%3 == 0 {
			// Deleting the newest lead must not free its id.
			leads = leads[1:]
		}
	}
}

func TestUUIDIDs_Next(t *testing.T) {
	id := UUIDIDs{}.Next(nil, "")
	if len(id) != 36 {
		t.Errorf("expected a uuid string, got %q", id)
	}
}

func TestNewIDGenerator(t *testing.T) {
	tests := []struct {
		strategy string
		want     IDGenerator
		wantErr  bool
	}{
		{strategy: "", want: SequentialIDs{Prefix: "P"}},
		{strategy: "sequence", want: SequentialIDs{Prefix: "P"}},
		{strategy: "UUID", want: UUIDIDs{}},
		{strategy: "snowflake", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NewIDGenerator(tt.strategy, "P")
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error %v", tt.strategy, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %#v, got %#v", tt.strategy, tt.want, got)
		}
	}
}

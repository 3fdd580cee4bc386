package plan

import (
	"testing"

	"github.com/nebari-dev/ultrasync/pkg/record"
)

func TestCompute(t *testing.T) {
	apexA := record.Record{Name: "", Type: record.TypeA, TTL: 300, Values: []string{"1.2.3.4", "1.2.3.5"}}
	apexAReordered := record.Record{Name: "", Type: record.TypeA, TTL: 300, Values: []string{"1.2.3.5", "1.2.3.4"}}
	apexANewTTL := record.Record{Name: "", Type: record.TypeA, TTL: 60, Values: []string{"1.2.3.4", "1.2.3.5"}}
	www := record.Record{Name: "www", Type: record.TypeCNAME, TTL: 300, Value: "example.com."}
	wwwMoved := record.Record{Name: "www", Type: record.TypeCNAME, TTL: 300, Value: "other.example.com."}
	mail := record.Record{Name: "mail", Type: record.TypeA, TTL: 300, Values: []string{"10.0.0.1"}}
	txt := record.Record{Name: "", Type: record.TypeTXT, TTL: 300, Values: []string{"v=spf1 -all"}}

	tests := []struct {
		name      string
		desired   []record.Record
		existing  []record.Record
		wantKinds []string
		wantNames []string
	}{
		{
			name:      "nothing to do",
			desired:   []record.Record{apexA, www},
			existing:  []record.Record{www, apexAReordered},
			wantKinds: nil,
		},
		{
			name:      "new zone",
			desired:   []record.Record{www, apexA},
			existing:  nil,
			wantKinds: []string{"create", "create"},
			wantNames: []string{"", "www"},
		},
		{
			name:      "mixed",
			desired:   []record.Record{apexANewTTL, wwwMoved, txt},
			existing:  []record.Record{apexA, www, mail},
			wantKinds: []string{"update", "create", "delete", "update"},
			wantNames: []string{"", "", "mail", "www"},
		},
		{
			name:      "delete everything",
			desired:   nil,
			existing:  []record.Record{www, mail},
			wantKinds: []string{"delete", "delete"},
			wantNames: []string{"mail", "www"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Compute(tt.desired, tt.existing)
			if len(changes) != len(tt.wantKinds) {
				t.Fatalf("Compute() returned %d changes, want %d: %v", len(changes), len(tt.wantKinds), changes)
			}
			for i, c := range changes {
				if c.Kind() != tt.wantKinds[i] {
					t.Errorf("change %d kind = %q, want %q", i, c.Kind(), tt.wantKinds[i])
				}
				if c.Record().Name != tt.wantNames[i] {
					t.Errorf("change %d name = %q, want %q", i, c.Record().Name, tt.wantNames[i])
				}
			}
		})
	}
}

func TestCompute_UpdateCarriesExisting(t *testing.T) {
	old := record.Record{Name: "www", Type: record.TypeCNAME, TTL: 300, Value: "a.example.com."}
	updated := record.Record{Name: "www", Type: record.TypeCNAME, TTL: 300, Value: "b.example.com."}

	changes := Compute([]record.Record{updated}, []record.Record{old})
	if len(changes) != 1 {
		t.Fatalf("Compute() returned %d changes, want 1", len(changes))
	}
	u, ok := changes[0].(record.Update)
	if !ok {
		t.Fatalf("change = %T, want record.Update", changes[0])
	}
	if u.Existing == nil || u.Existing.Value != "a.example.com." {
		t.Errorf("Existing = %+v, want the old record", u.Existing)
	}
	if u.New.Value != "b.example.com." {
		t.Errorf("New = %+v, want the desired record", u.New)
	}
}

func TestSummarize(t *testing.T) {
	rec := record.Record{Name: "www", Type: record.TypeA, TTL: 60, Values: []string{"1.1.1.1"}}
	changes := []record.Change{
		record.Create{New: rec},
		record.Create{New: rec},
		record.Update{New: rec},
		record.Delete{Existing: rec},
	}

	s := Summarize(changes)
	if s.Creates != 2 || s.Updates != 1 || s.Deletes != 1 {
		t.Errorf("Summarize() = %+v", s)
	}
	if s.Total() != 4 {
		t.Errorf("Total() = %d, want 4", s.Total())
	}
	if got, want := s.String(), "2 to create, 1 to update, 1 to delete"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// Package plan computes the changes that turn existing zone state into the
// desired state.
package plan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nebari-dev/ultrasync/pkg/record"
)

// Compute returns the changes needed to make existing match desired,
// ordered by record name, then type. Records are matched by name and type;
// value order does not count as a difference.
func Compute(desired, existing []record.Record) []record.Change {
	have := make(map[record.Key]record.Record, len(existing))
	for _, rec := range existing {
		have[rec.Key()] = rec
	}

	var changes []record.Change
	want := make(map[record.Key]bool, len(desired))
	for _, rec := range desired {
		want[rec.Key()] = true

		current, ok := have[rec.Key()]
		switch {
		case !ok:
			changes = append(changes, record.Create{New: rec})
		case !current.Equal(rec):
			changes = append(changes, record.Update{Existing: &current, New: rec})
		}
	}

	for _, rec := range existing {
		if !want[rec.Key()] {
			changes = append(changes, record.Delete{Existing: rec})
		}
	}

	slices.SortStableFunc(changes, func(a, b record.Change) int {
		ra, rb := a.Record(), b.Record()
		if c := strings.Compare(ra.Name, rb.Name); c != 0 {
			return c
		}
		return strings.Compare(string(ra.Type), string(rb.Type))
	})
	return changes
}

// Summary counts changes by kind
type Summary struct {
	Creates int
	Updates int
	Deletes int
}

// Summarize counts changes by kind
func Summarize(changes []record.Change) Summary {
	var s Summary
	for _, c := range changes {
		switch c.(type) {
		case record.Create:
			s.Creates++
		case record.Update:
			s.Updates++
		case record.Delete:
			s.Deletes++
		}
	}
	return s
}

// Total returns the number of changes
func (s Summary) Total() int {
	return s.Creates + s.Updates + s.Deletes
}

func (s Summary) String() string {
	return fmt.Sprintf("%d to create, %d to update, %d to delete", s.Creates, s.Updates, s.Deletes)
}

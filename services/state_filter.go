// services/state_filter.go
package services

import (
	"fmt"

	"github.com/gewnthar/covidtesting/models"
)

// FilterStates keeps every row of a state whose most recent record has at least minConfirmed cases.
// Two rows on a state's most recent date means deduplication did not hold and is reported as
// ErrDuplicateLatest.
func FilterStates(records []models.TestingRecord, minConfirmed int64) ([]models.TestingRecord, error) {
	type latest struct {
		rec   models.TestingRecord
		count int
	}
	byState := make(map[string]*latest)

	for _, r := range records {
		l, ok := byState[r.State]
		switch {
		case !ok:
			byState[r.State] = &latest{rec: r, count: 1}
		case r.Date.After(l.rec.Date):
			l.rec, l.count = r, 1
		case r.Date.Equal(l.rec.Date):
			l.count++
		}
	}

	keep := make(map[string]bool, len(byState))
	for state, l := range byState {
		if l.count > 1 {
			return nil, fmt.Errorf("state %q on %s: %w", state, l.rec.Date.Format("2006-01-02"), models.ErrDuplicateLatest)
		}
		keep[state] = l.rec.Confirmed >= minConfirmed
	}

	out := make([]models.TestingRecord, 0, len(records))
	for _, r := range records {
		if keep[r.State] {
			out = append(out, r)
		}
	}
	return out, nil
}

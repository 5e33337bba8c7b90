// services/gap_filler.go
package services

import (
	"time"

	"github.com/gewnthar/covidtesting/models"
	"github.com/gewnthar/covidtesting/utils"
)

// Window is the inclusive daily calendar every state is aligned to.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days lists every day in the window.
func (w Window) Days() []time.Time {
	return utils.DailyRange(w.Start, w.End)
}

// CalendarWindow spans the earliest record to the latest one, capped at today.
func CalendarWindow(records []models.TestingRecord, today time.Time) (Window, error) {
	if len(records) == 0 {
		return Window{}, models.ErrNoData
	}
	start, end := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(start) {
			start = r.Date
		}
		if r.Date.After(end) {
			end = r.Date
		}
	}
	if today = utils.TruncateDay(today); today.Before(end) {
		end = today
	}
	if end.Before(start) {
		// Every record lies in the future.
		return Window{}, models.ErrNoData
	}
	return Window{Start: start, End: end}, nil
}

// FillGaps aligns each state onto the shared calendar window. A missing day takes the nearest
// earlier value of that state; days before the state's first record take its first value.
// States are emitted in order of first appearance, each as a date-ascending run covering the window.
// A state without any record inside the window is dropped with a warning.
func FillGaps(records []models.TestingRecord, today time.Time) (Window, []models.TestingRecord, []models.DataQualityWarning, error) {
	window, err := CalendarWindow(records, today)
	if err != nil {
		return Window{}, nil, nil, err
	}
	days := window.Days()

	var order []string
	byState := make(map[string]map[time.Time]models.TestingRecord)
	for _, r := range records {
		m, ok := byState[r.State]
		if !ok {
			m = make(map[time.Time]models.TestingRecord)
			byState[r.State] = m
			order = append(order, r.State)
		}
		m[utils.TruncateDay(r.Date)] = r
	}

	var warnings []models.DataQualityWarning
	out := make([]models.TestingRecord, 0, len(order)*len(days))
	for _, state := range order {
		filled, ok := fillState(state, byState[state], days)
		if !ok {
			warnings = append(warnings, models.DataQualityWarning{State: state, Reason: "no records inside the calendar window"})
			continue
		}
		out = append(out, filled...)
	}
	if len(out) == 0 {
		return Window{}, nil, warnings, models.ErrNoData
	}
	return window, out, warnings, nil
}

// fillState merges one state's records against days, then forward-fills and back-fills
// the leading gap.
func fillState(state string, known map[time.Time]models.TestingRecord, days []time.Time) ([]models.TestingRecord, bool) {
	series := make([]*models.TestingRecord, len(days))
	for i, d := range days {
		if r, ok := known[d]; ok {
			r := r
			series[i] = &r
		}
	}

	// Forward pass.
	var last *models.TestingRecord
	for i := range series {
		if series[i] != nil {
			last = series[i]
		} else if last != nil {
			series[i] = last
		}
	}
	if last == nil {
		return nil, false
	}

	// Backward pass covers only the leading gap; everything after the first record is set.
	var next *models.TestingRecord
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != nil {
			next = series[i]
		} else {
			series[i] = next
		}
	}

	out := make([]models.TestingRecord, len(days))
	for i, d := range days {
		out[i] = models.TestingRecord{
			State:     state,
			Date:      d,
			Tested:    series[i].Tested,
			Confirmed: series[i].Confirmed,
		}
	}
	return out, true
}

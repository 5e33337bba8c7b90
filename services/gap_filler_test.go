package services

import (
	"errors"
	"testing"
	"time"

	"github.com/gewnthar/covidtesting/models"
)

var farFuture = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func TestFillGaps_ForwardAndBackward(t *testing.T) {
	records := []models.TestingRecord{
		{State: "A", Date: day(10), Tested: 100, Confirmed: 10},
		{State: "A", Date: day(13), Tested: 130, Confirmed: 13},
		{State: "B", Date: day(12), Tested: 200, Confirmed: 20}, // starts late
		{State: "B", Date: day(14), Tested: 240, Confirmed: 24},
	}

	window, got, warnings, err := FillGaps(records, farFuture)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if !window.Start.Equal(day(10)) || !window.End.Equal(day(14)) {
		t.Fatalf("unexpected window %v..%v", window.Start, window.End)
	}

	want := []models.TestingRecord{
		{State: "A", Date: day(10), Tested: 100, Confirmed: 10},
		{State: "A", Date: day(11), Tested: 100, Confirmed: 10}, // forward
		{State: "A", Date: day(12), Tested: 100, Confirmed: 10}, // forward
		{State: "A", Date: day(13), Tested: 130, Confirmed: 13},
		{State: "A", Date: day(14), Tested: 130, Confirmed: 13}, // forward to window end
		{State: "B", Date: day(10), Tested: 200, Confirmed: 20}, // backward
		{State: "B", Date: day(11), Tested: 200, Confirmed: 20}, // backward
		{State: "B", Date: day(12), Tested: 200, Confirmed: 20},
		{State: "B", Date: day(13), Tested: 200, Confirmed: 20}, // forward
		{State: "B", Date: day(14), Tested: 240, Confirmed: 24},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestFillGaps_CapsAtToday(t *testing.T) {
	records := []models.TestingRecord{
		{State: "A", Date: day(10), Tested: 100, Confirmed: 10},
		{State: "A", Date: day(20), Tested: 200, Confirmed: 20},
		{State: "B", Date: day(19), Tested: 300, Confirmed: 30}, // only after today
	}
	today := time.Date(2020, 4, 12, 18, 30, 0, 0, time.UTC)

	window, got, warnings, err := FillGaps(records, today)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !window.End.Equal(day(12)) {
		t.Fatalf("expected window capped at today, got %v", window.End)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows for A only, got %+v", got)
	}
	for _, r := range got {
		if r.State != "A" || r.Tested != 100 {
			t.Errorf("unexpected row %+v", r)
		}
		if r.Date.After(window.End) {
			t.Errorf("row outside window %+v", r)
		}
	}
	if len(warnings) != 1 || warnings[0].State != "B" {
		t.Fatalf("expected warning for B, got %v", warnings)
	}
}

func TestFillGaps_CoverageEqualsWindow(t *testing.T) {
	records := []models.TestingRecord{
		{State: "A", Date: day(11), Tested: 1, Confirmed: 1},
		{State: "B", Date: day(15), Tested: 1, Confirmed: 1},
		{State: "C", Date: day(13), Tested: 1, Confirmed: 1},
		{State: "C", Date: day(20), Tested: 1, Confirmed: 1},
	}
	window, got, _, err := FillGaps(records, farFuture)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	days := window.Days()
	perState := map[string][]time.Time{}
	for _, r := range got {
		perState[r.State] = append(perState[r.State], r.Date)
	}
	for state, dates := range perState {
		if len(dates) != len(days) {
			t.Fatalf("%s: expected %d days, got %d", state, len(days), len(dates))
		}
		for i := range days {
			if !dates[i].Equal(days[i]) {
				t.Errorf("%s: day %d expected %v, got %v", state, i, days[i], dates[i])
			}
		}
	}
	if len(perState) != 3 {
		t.Fatalf("expected 3 states, got %d", len(perState))
	}
}

func TestFillGaps_Empty(t *testing.T) {
	if _, _, _, err := FillGaps(nil, farFuture); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCalendarWindow_AllFuture(t *testing.T) {
	records := []models.TestingRecord{{State: "A", Date: day(20), Tested: 1, Confirmed: 1}}
	if _, err := CalendarWindow(records, day(1)); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

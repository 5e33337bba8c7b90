package services

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/gewnthar/covidtesting/models"
)

var testAux = map[string]models.AuxiliaryRecord{
	"A": {State: "A", Abbr: "AA", Zone: "Southern", Population: 2000000},
}

func TestEnrich_Metrics(t *testing.T) {
	records := []models.TestingRecord{
		{State: "A", Date: day(10), Tested: 1000, Confirmed: 50},
	}
	got, warnings := Enrich(records, testAux)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.TestPosRate != 5.0 {
		t.Errorf("expected positivity 5.0, got %v", r.TestPosRate)
	}
	if r.TestPer1M != 500.0 {
		t.Errorf("expected 500 tests per million, got %v", r.TestPer1M)
	}
	if r.DateString != "2020/04/10" {
		t.Errorf("expected zero padded frame key, got %s", r.DateString)
	}
	if r.Abbr() != "AA" || r.Zone() != "Southern" {
		t.Errorf("unexpected join %+v", r.Auxiliary)
	}
}

func TestEnrich_UnmatchedState(t *testing.T) {
	records := []models.TestingRecord{
		{State: "Z", Date: day(10), Tested: 100, Confirmed: 5},
		{State: "Z", Date: day(11), Tested: 100, Confirmed: 5},
	}
	got, warnings := Enrich(records, testAux)
	if len(got) != 2 {
		t.Fatalf("left join must keep rows, got %d", len(got))
	}
	if got[0].Auxiliary != nil || !math.IsNaN(got[0].TestPer1M) {
		t.Errorf("expected nil auxiliary and NaN tests per million, got %+v", got[0])
	}
	if got[0].TestPosRate != 5.0 {
		t.Errorf("positivity does not depend on auxiliary data, got %v", got[0].TestPosRate)
	}
	if len(warnings) != 1 || warnings[0].State != "Z" {
		t.Fatalf("expected one warning for Z, got %v", warnings)
	}
}

func TestEnrich_AllNaNMetricWarnings(t *testing.T) {
	aux := map[string]models.AuxiliaryRecord{
		"P": {State: "P", Abbr: "PP", Zone: "Central", Population: 0},
		"Q": {State: "Q", Abbr: "QQ", Zone: "Central", Population: 1000000},
	}
	records := []models.TestingRecord{
		{State: "P", Date: day(10), Tested: 100, Confirmed: 5},
		{State: "P", Date: day(11), Tested: 120, Confirmed: 6},
		{State: "Q", Date: day(10), Tested: 0, Confirmed: 0},
		{State: "Q", Date: day(11), Tested: 0, Confirmed: 0},
	}

	got, warnings := Enrich(records, aux)
	if !math.IsNaN(got[0].TestPer1M) {
		t.Fatalf("expected NaN tests per million for zero population, got %v", got[0].TestPer1M)
	}
	want := []models.DataQualityWarning{
		{State: "P", Reason: "tests per million is NaN on every row"},
		{State: "Q", Reason: "test positivity rate is NaN on every row"},
	}
	if !reflect.DeepEqual(warnings, want) {
		t.Fatalf("expected %v, got %v", want, warnings)
	}
}

func TestEnrich_PartialNaNNoWarning(t *testing.T) {
	aux := map[string]models.AuxiliaryRecord{
		"R": {State: "R", Abbr: "RR", Zone: "Central", Population: 1000000},
	}
	records := []models.TestingRecord{
		{State: "R", Date: day(10), Tested: 0, Confirmed: 0},
		{State: "R", Date: day(11), Tested: 10, Confirmed: 1},
	}
	if _, warnings := Enrich(records, aux); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestPositivityRate_ZeroTested(t *testing.T) {
	if !math.IsNaN(PositivityRate(3, 0)) {
		t.Fatalf("expected NaN")
	}
	if !math.IsNaN(TestsPerMillion(10, 0)) {
		t.Fatalf("expected NaN")
	}
}

func TestComputeBounds(t *testing.T) {
	records := []models.EnrichedRecord{
		{TestPosRate: 4.2, TestPer1M: 1230},
		{TestPosRate: math.NaN(), TestPer1M: math.NaN()},
		{TestPosRate: 1.0, TestPer1M: 200},
	}
	b, err := ComputeBounds(records)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if b.MaxPosRate != 6 {
		t.Errorf("expected 6, got %v", b.MaxPosRate)
	}
	if b.MaxPer1M != 2000 {
		t.Errorf("expected 2000, got %v", b.MaxPer1M)
	}
}

func TestComputeBounds_ExactMultiple(t *testing.T) {
	b, err := ComputeBounds([]models.EnrichedRecord{{TestPosRate: 5, TestPer1M: 1000}})
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if b.MaxPosRate != 6 || b.MaxPer1M != 1500 {
		t.Fatalf("unexpected bounds %+v", b)
	}
}

func TestComputeBounds_NoFiniteValues(t *testing.T) {
	_, err := ComputeBounds([]models.EnrichedRecord{{TestPosRate: 1, TestPer1M: math.NaN()}})
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

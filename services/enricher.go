// services/enricher.go
package services

import (
	"math"

	"github.com/gewnthar/covidtesting/models"
	"github.com/gewnthar/covidtesting/utils"
)

// Enrich left-joins records to the auxiliary table on exact state name and derives the
// positivity rate, tests per million and the frame key. Unmatched states keep a nil
// Auxiliary and NaN TestPer1M. One warning is returned per unmatched state, and per matched
// state and metric when that metric is NaN on every row of the state.
func Enrich(records []models.TestingRecord, aux map[string]models.AuxiliaryRecord) ([]models.EnrichedRecord, []models.DataQualityWarning) {
	out := make([]models.EnrichedRecord, 0, len(records))

	type nanTally struct{ posRate, per1M bool }
	var order []string
	allNaN := make(map[string]*nanTally)

	for _, r := range records {
		e := models.EnrichedRecord{
			TestingRecord: r,
			TestPosRate:   PositivityRate(r.Confirmed, r.Tested),
			TestPer1M:     math.NaN(),
			DateString:    utils.FrameKey(r.Date),
		}
		if a, ok := aux[r.State]; ok {
			a := a
			e.Auxiliary = &a
			e.TestPer1M = TestsPerMillion(r.Tested, a.Population)
		}
		out = append(out, e)

		tally, seen := allNaN[r.State]
		if !seen {
			tally = &nanTally{posRate: true, per1M: true}
			allNaN[r.State] = tally
			order = append(order, r.State)
		}
		tally.posRate = tally.posRate && math.IsNaN(e.TestPosRate)
		tally.per1M = tally.per1M && math.IsNaN(e.TestPer1M)
	}

	var warnings []models.DataQualityWarning
	for _, state := range order {
		if allNaN[state].posRate {
			warnings = append(warnings, models.DataQualityWarning{State: state, Reason: "test positivity rate is NaN on every row"})
		}
		if _, ok := aux[state]; !ok {
			// Unmatched states have no population; one warning covers tests per million.
			warnings = append(warnings, models.DataQualityWarning{State: state, Reason: "missing from auxiliary table"})
			continue
		}
		if allNaN[state].per1M {
			warnings = append(warnings, models.DataQualityWarning{State: state, Reason: "tests per million is NaN on every row"})
		}
	}
	return out, warnings
}

// PositivityRate is confirmed/tested*100, NaN when nothing was tested.
func PositivityRate(confirmed, tested int64) float64 {
	if tested == 0 {
		return math.NaN()
	}
	return float64(confirmed) / float64(tested) * 100
}

// TestsPerMillion is tested/population*1e6, NaN when the population is unknown.
func TestsPerMillion(tested, population int64) float64 {
	if population <= 0 {
		return math.NaN()
	}
	return float64(tested) / float64(population) * 1000000
}

// ComputeBounds fixes the axes: one point above the highest positivity rate, and the highest
// tests-per-million plus 500 rounded up to a multiple of 500. NaN values are ignored.
func ComputeBounds(records []models.EnrichedRecord) (models.AxisBounds, error) {
	maxPos, maxPer1M := math.NaN(), math.NaN()
	for _, r := range records {
		if !math.IsNaN(r.TestPosRate) && (math.IsNaN(maxPos) || r.TestPosRate > maxPos) {
			maxPos = r.TestPosRate
		}
		if !math.IsNaN(r.TestPer1M) && (math.IsNaN(maxPer1M) || r.TestPer1M > maxPer1M) {
			maxPer1M = r.TestPer1M
		}
	}
	if math.IsNaN(maxPos) || math.IsNaN(maxPer1M) {
		return models.AxisBounds{}, models.ErrNoData
	}
	return models.AxisBounds{
		MaxPosRate: math.Ceil(maxPos) + 1,
		MaxPer1M:   math.Ceil((maxPer1M+500)/500) * 500,
	}, nil
}

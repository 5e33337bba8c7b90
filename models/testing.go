// models/testing.go
package models

import "time"

// RawTestingRecord is one element of the "states_tested_data" array as served by the API.
// Numbers arrive as strings and may be empty.
type RawTestingRecord struct {
	State       string `json:"state"`
	UpdatedOn   string `json:"updatedon"`   // dd/mm/yyyy
	TotalTested string `json:"totaltested"` // may be ""
	Positive    string `json:"positive"`    // may be ""
}

// TestingRecord is a cleaned per-state daily total. Date is a UTC midnight.
type TestingRecord struct {
	State     string
	Date      time.Time
	Tested    int64
	Confirmed int64
}

// AuxiliaryRecord is a row of the static state reference table.
type AuxiliaryRecord struct {
	State      string `csv:"state"`
	Abbr       string `csv:"abbr"`
	Zone       string `csv:"zone"`
	Population int64  `csv:"population"`
}

// EnrichedRecord is a TestingRecord joined with its state's auxiliary data and derived metrics.
type EnrichedRecord struct {
	TestingRecord

	// Nil when the state is missing from the auxiliary table.
	Auxiliary *AuxiliaryRecord

	TestPosRate float64 // NaN when undefined
	TestPer1M   float64 // NaN when undefined
	DateString  string  // YYYY/MM/DD
}

// Abbr returns the state's abbreviation or "" when unmatched.
func (r EnrichedRecord) Abbr() string {
	if r.Auxiliary == nil {
		return ""
	}
	return r.Auxiliary.Abbr
}

// Zone returns the state's zone or "" when unmatched.
func (r EnrichedRecord) Zone() string {
	if r.Auxiliary == nil {
		return ""
	}
	return r.Auxiliary.Zone
}

// AxisBounds fixes the chart axes across all animation frames.
type AxisBounds struct {
	MaxPosRate float64
	MaxPer1M   float64
}

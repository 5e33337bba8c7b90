// services/normalize.go
package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gewnthar/covidtesting/models"
	"github.com/gewnthar/covidtesting/utils"
)

type stateDay struct {
	state string
	date  string
}

// Normalize turns raw API rows into cleaned testing records.
//
// Rows with an empty tested or confirmed value are dropped, then duplicates on (state, date)
// keep their first occurrence. Surviving values are parsed; a malformed date or count fails the
// whole batch with a ParseError. Rows dated on or before cutoff, and rows with no tests or a
// negative case count, are dropped. Input order is preserved.
func Normalize(raw []models.RawTestingRecord, cutoff time.Time) ([]models.TestingRecord, error) {
	seen := make(map[stateDay]struct{}, len(raw))
	kept := make([]models.RawTestingRecord, 0, len(raw))

	for _, r := range raw {
		if strings.TrimSpace(r.TotalTested) == "" || strings.TrimSpace(r.Positive) == "" {
			continue
		}
		key := stateDay{state: r.State, date: dayKey(r.UpdatedOn)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}

	cutoff = utils.TruncateDay(cutoff)
	out := make([]models.TestingRecord, 0, len(kept))
	for _, r := range kept {
		date, err := utils.ParseDayMonthYear(r.UpdatedOn)
		if err != nil {
			return nil, &models.ParseError{Field: "updatedon", Value: r.UpdatedOn, Err: err}
		}
		tested, err := parseCount("totaltested", r.TotalTested)
		if err != nil {
			return nil, err
		}
		confirmed, err := parseCount("positive", r.Positive)
		if err != nil {
			return nil, err
		}

		if !date.After(cutoff) {
			continue
		}
		if tested <= 0 || confirmed < 0 {
			continue
		}

		out = append(out, models.TestingRecord{
			State:     r.State,
			Date:      date,
			Tested:    tested,
			Confirmed: confirmed,
		})
	}
	return out, nil
}

// dayKey makes "9/4/2020" and "09/04/2020" the same day. Unparseable values are kept verbatim
// and fail later in parsing.
func dayKey(s string) string {
	if d, err := utils.ParseDayMonthYear(s); err == nil {
		return d.Format(utils.ISODateLayout)
	}
	return s
}

func parseCount(field, value string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &models.ParseError{Field: field, Value: value, Err: err}
	}
	return n, nil
}

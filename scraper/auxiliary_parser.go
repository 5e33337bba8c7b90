// scraper/auxiliary_parser.go
package scraper

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/covidtesting/models"
)

// ParseAuxiliaryCsv decodes the state reference table. The header must carry the columns
// state, abbr, zone and population; extra columns are ignored.
func ParseAuxiliaryCsv(reader io.Reader) ([]models.AuxiliaryRecord, error) {
	var records []models.AuxiliaryRecord

	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for auxiliary table: %w", err)
	}

	for _, col := range []string{"state", "abbr", "zone", "population"} {
		if !hasColumn(decoder.Header(), col) {
			return nil, &models.ParseError{Field: "auxiliary header", Value: strings.Join(decoder.Header(), ","), Err: fmt.Errorf("missing column %q", col)}
		}
	}

	if err := decoder.Decode(&records); err != nil {
		return nil, &models.ParseError{Field: "auxiliary table", Err: err}
	}

	for i, r := range records {
		if r.Population <= 0 {
			return nil, &models.ParseError{Field: "population", Value: fmt.Sprint(r.Population), Err: fmt.Errorf("row %d (%s): must be positive", i+1, r.State)}
		}
	}
	return records, nil
}

// LoadAuxiliary reads the state reference table from disk and indexes it by state name.
func LoadAuxiliary(path string) (map[string]models.AuxiliaryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open auxiliary table %s: %w", path, err)
	}
	defer f.Close()

	records, err := ParseAuxiliaryCsv(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse auxiliary table %s: %w", path, err)
	}
	return IndexAuxiliary(records)
}

// IndexAuxiliary keys records by exact state name. Duplicate names are rejected.
func IndexAuxiliary(records []models.AuxiliaryRecord) (map[string]models.AuxiliaryRecord, error) {
	index := make(map[string]models.AuxiliaryRecord, len(records))
	for _, r := range records {
		if _, dup := index[r.State]; dup {
			return nil, &models.ParseError{Field: "state", Value: r.State, Err: fmt.Errorf("duplicate auxiliary row")}
		}
		index[r.State] = r
	}
	return index, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

// AuxiliaryFile is an auxiliary table on disk.
type AuxiliaryFile string

// LoadAuxiliary reads and indexes the table.
func (p AuxiliaryFile) LoadAuxiliary() (map[string]models.AuxiliaryRecord, error) {
	return LoadAuxiliary(string(p))
}

// scraper/testing_fetcher.go
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gewnthar/covidtesting/models"
)

const statesTestedKey = "states_tested_data"

// TestingFetcher downloads the per-state testing snapshot.
type TestingFetcher struct {
	URL    string
	Client *http.Client
	Log    log.FieldLogger
}

// NewTestingFetcher returns a fetcher with the default HTTP client.
func NewTestingFetcher(url string, logger log.FieldLogger) *TestingFetcher {
	return &TestingFetcher{
		URL: url,
		// Fixed timeout; not configurable.
		Client: &http.Client{Timeout: 60 * time.Second},
		Log:    logger,
	}
}

// FetchStatesTested issues one GET and returns the records under "states_tested_data".
// Transport failures and non-2xx responses are NetworkErrors; shape problems are ParseErrors.
func (f *TestingFetcher) FetchStatesTested(ctx context.Context) ([]models.RawTestingRecord, error) {
	f.Log.WithField("url", f.URL).Info("Fetching state testing data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &models.NetworkError{URL: f.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &models.NetworkError{URL: f.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &models.NetworkError{
			URL:        f.URL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, string(b)),
		}
	}

	records, err := DecodeStatesTested(resp.Body)
	if err != nil {
		return nil, err
	}

	f.Log.WithField("records", len(records)).Info("Fetched state testing data")
	return records, nil
}

// DecodeStatesTested parses a testing snapshot document.
func DecodeStatesTested(r io.Reader) ([]models.RawTestingRecord, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &models.ParseError{Field: "document", Err: err}
	}

	raw, ok := doc[statesTestedKey]
	if !ok {
		return nil, &models.ParseError{Field: statesTestedKey, Err: errors.New("key missing")}
	}

	var records []models.RawTestingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &models.ParseError{Field: statesTestedKey, Err: err}
	}
	if records == nil {
		// "null" decodes without error but is not an array.
		return nil, &models.ParseError{Field: statesTestedKey, Err: errors.New("not an array")}
	}
	return records, nil
}

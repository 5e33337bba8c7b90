// services/pipeline.go
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gewnthar/covidtesting/models"
)

// TestingSource supplies the raw testing snapshot.
type TestingSource interface {
	FetchStatesTested(ctx context.Context) ([]models.RawTestingRecord, error)
}

// AuxiliarySource supplies the state reference table keyed by state name.
type AuxiliarySource interface {
	LoadAuxiliary() (map[string]models.AuxiliaryRecord, error)
}

// PipelineOptions holds the tunables of a run.
type PipelineOptions struct {
	Cutoff       time.Time
	MinConfirmed int64
	// SkipUnmatched drops states missing from the auxiliary table before bounds and rendering.
	// Otherwise they are kept with nil auxiliary data.
	SkipUnmatched bool
	// Now returns the current time; the calendar window never extends past its day.
	Now func() time.Time
}

// Pipeline runs fetch, normalize, filter, fill and enrich once.
type Pipeline struct {
	source    TestingSource
	auxiliary AuxiliarySource
	opts      PipelineOptions
	log       log.FieldLogger
}

func NewPipeline(source TestingSource, auxiliary AuxiliarySource, opts PipelineOptions, logger log.FieldLogger) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		source:    source,
		auxiliary: auxiliary,
		opts:      opts,
		log:       logger,
	}
}

// Run executes every stage in order and returns the immutable result.
func (p *Pipeline) Run(ctx context.Context) (*Dataset, error) {
	started := time.Now()

	aux, err := p.auxiliary.LoadAuxiliary()
	if err != nil {
		return nil, fmt.Errorf("load auxiliary table: %w", err)
	}
	p.log.WithField("states", len(aux)).Debug("Loaded auxiliary table")

	raw, err := p.source.FetchStatesTested(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch testing data: %w", err)
	}

	ds, err := p.Transform(raw, aux)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(log.Fields{
		"states":   len(ds.states),
		"records":  len(ds.records),
		"frames":   len(ds.frames),
		"warnings": len(ds.warnings),
		"duration": time.Since(started).String(),
	}).Info("Pipeline finished")
	return ds, nil
}

// Transform runs the cleaning and enrichment stages on an already fetched snapshot.
func (p *Pipeline) Transform(raw []models.RawTestingRecord, aux map[string]models.AuxiliaryRecord) (*Dataset, error) {
	cleaned, err := Normalize(raw, p.opts.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	p.log.WithFields(log.Fields{"raw": len(raw), "cleaned": len(cleaned)}).Info("Normalized testing data")

	filtered, err := FilterStates(cleaned, p.opts.MinConfirmed)
	if err != nil {
		return nil, fmt.Errorf("filter states: %w", err)
	}
	p.log.WithFields(log.Fields{"rows": len(filtered), "min_confirmed": p.opts.MinConfirmed}).Info("Filtered states")

	window, filled, fillWarnings, err := FillGaps(filtered, p.opts.Now())
	if err != nil {
		return nil, fmt.Errorf("fill gaps: %w", err)
	}
	p.log.WithFields(log.Fields{
		"start": window.Start.Format("2006-01-02"),
		"end":   window.End.Format("2006-01-02"),
		"rows":  len(filled),
	}).Info("Filled calendar gaps")

	enriched, enrichWarnings := Enrich(filled, aux)
	warnings := append(fillWarnings, enrichWarnings...)
	for _, w := range warnings {
		p.log.WithFields(log.Fields{"state": w.State, "reason": w.Reason}).Warn("Data quality warning")
	}

	if p.opts.SkipUnmatched {
		enriched = dropUnmatched(enriched)
	}

	bounds, err := ComputeBounds(enriched)
	if err != nil {
		return nil, fmt.Errorf("compute axis bounds: %w", err)
	}

	return newDataset(enriched, bounds, window, warnings), nil
}

func dropUnmatched(records []models.EnrichedRecord) []models.EnrichedRecord {
	out := records[:0:0]
	for _, r := range records {
		if r.Auxiliary != nil {
			out = append(out, r)
		}
	}
	return out
}

// Dataset is the result of one pipeline run. It is never modified after construction;
// accessors hand out copies.
type Dataset struct {
	records  []models.EnrichedRecord
	bounds   models.AxisBounds
	window   Window
	states   []string
	frames   []string
	warnings []models.DataQualityWarning
}

func newDataset(records []models.EnrichedRecord, bounds models.AxisBounds, window Window, warnings []models.DataQualityWarning) *Dataset {
	var states []string
	seenState := make(map[string]bool)
	seenFrame := make(map[string]bool)
	var frames []string
	for _, r := range records {
		if !seenState[r.State] {
			seenState[r.State] = true
			states = append(states, r.State)
		}
		if !seenFrame[r.DateString] {
			seenFrame[r.DateString] = true
			frames = append(frames, r.DateString)
		}
	}
	sort.Strings(frames)

	return &Dataset{
		records:  records,
		bounds:   bounds,
		window:   window,
		states:   states,
		frames:   frames,
		warnings: warnings,
	}
}

// Records returns the enriched rows, state-major and date-ascending.
func (d *Dataset) Records() []models.EnrichedRecord {
	out := make([]models.EnrichedRecord, len(d.records))
	copy(out, d.records)
	for i := range out {
		if out[i].Auxiliary != nil {
			a := *out[i].Auxiliary
			out[i].Auxiliary = &a
		}
	}
	return out
}

func (d *Dataset) Bounds() models.AxisBounds { return d.bounds }

func (d *Dataset) Window() Window { return d.window }

// States lists the plotted states in order of first appearance.
func (d *Dataset) States() []string { return append([]string(nil), d.states...) }

// Frames lists the animation frame keys in chronological order.
func (d *Dataset) Frames() []string { return append([]string(nil), d.frames...) }

func (d *Dataset) Warnings() []models.DataQualityWarning {
	return append([]models.DataQualityWarning(nil), d.warnings...)
}

// render/figure.go
package render

import (
	"fmt"
	"math"

	"github.com/gewnthar/covidtesting/models"
)

// Figure is a Plotly figure: the first frame's traces, the layout and every animation frame.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Frames []Frame `json:"frames"`
}

type Frame struct {
	Name string  `json:"name"`
	Data []Trace `json:"data"`
}

// Trace holds the bubbles of one zone. IDs carry the state name so Plotly animates a state's
// bubble between frames instead of redrawing it.
type Trace struct {
	Type          string     `json:"type"`
	Mode          string     `json:"mode"`
	Name          string     `json:"name"`
	LegendGroup   string     `json:"legendgroup"`
	ShowLegend    bool       `json:"showlegend"`
	IDs           []string   `json:"ids"`
	X             []*float64 `json:"x"`
	Y             []*float64 `json:"y"`
	Text          []string   `json:"text"`
	TextPosition  string     `json:"textposition"`
	HoverText     []string   `json:"hovertext"`
	CustomData    [][]int64  `json:"customdata"`
	HoverTemplate string     `json:"hovertemplate"`
	Marker        Marker     `json:"marker"`
}

type Marker struct {
	Color    string  `json:"color"`
	Size     []int64 `json:"size"`
	SizeMode string  `json:"sizemode"`
	SizeRef  float64 `json:"sizeref"`
	Opacity  float64 `json:"opacity"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title      Title      `json:"title"`
	Range      [2]float64 `json:"range"`
	ShowLine   bool       `json:"showline"`
	Ticks      string     `json:"ticks"`
	ShowGrid   bool       `json:"showgrid"`
	ZeroLine   bool       `json:"zeroline"`
	Automargin bool       `json:"automargin"`
}

type Legend struct {
	Title      Title  `json:"title"`
	ItemSizing string `json:"itemsizing"`
}

type Layout struct {
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	XAxis        Axis         `json:"xaxis"`
	YAxis        Axis         `json:"yaxis"`
	Legend       Legend       `json:"legend"`
	PlotBGColor  string       `json:"plot_bgcolor"`
	PaperBGColor string       `json:"paper_bgcolor"`
	UpdateMenus  []UpdateMenu `json:"updatemenus"`
	Sliders      []Slider     `json:"sliders"`
}

type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

type UpdateMenu struct {
	Type       string         `json:"type"`
	Direction  string         `json:"direction"`
	ShowActive bool           `json:"showactive"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	XAnchor    string         `json:"xanchor"`
	YAnchor    string         `json:"yanchor"`
	Pad        map[string]int `json:"pad"`
	Buttons    []Button       `json:"buttons"`
}

type SliderStep struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

type Slider struct {
	Active       int            `json:"active"`
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	Len          float64        `json:"len"`
	XAnchor      string         `json:"xanchor"`
	YAnchor      string         `json:"yanchor"`
	Pad          map[string]int `json:"pad"`
	CurrentValue map[string]any `json:"currentvalue"`
	Steps        []SliderStep   `json:"steps"`
}

const (
	figureWidth   = 950
	figureHeight  = 600
	sizeMax       = 20 // largest bubble diameter in px
	unmatchedZone = "(no zone)"
)

// Plotly's default qualitative palette, assigned to zones in order of first appearance.
var zonePalette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Dataset is the part of the pipeline result the renderer needs.
type Dataset interface {
	Records() []models.EnrichedRecord
	Bounds() models.AxisBounds
	Frames() []string
}

// BuildFigure lays the dataset out as an animated bubble chart: one frame per date, one trace
// per zone, bubble area proportional to confirmed cases.
func BuildFigure(ds Dataset) (Figure, error) {
	records := ds.Records()
	frames := ds.Frames()
	if len(records) == 0 || len(frames) == 0 {
		return Figure{}, fmt.Errorf("build figure: %w", models.ErrNoData)
	}

	var zones []string
	seenZone := map[string]bool{}
	var maxConfirmed int64
	byFrame := make(map[string][]models.EnrichedRecord, len(frames))
	for _, r := range records {
		z := zoneOf(r)
		if !seenZone[z] {
			seenZone[z] = true
			zones = append(zones, z)
		}
		if r.Confirmed > maxConfirmed {
			maxConfirmed = r.Confirmed
		}
		byFrame[r.DateString] = append(byFrame[r.DateString], r)
	}

	sizeRef := 1.0
	if maxConfirmed > 0 {
		sizeRef = 2.0 * float64(maxConfirmed) / (sizeMax * sizeMax)
	}
	colors := make(map[string]string, len(zones))
	for i, z := range zones {
		colors[z] = zonePalette[i%len(zonePalette)]
	}

	fig := Figure{Frames: make([]Frame, 0, len(frames))}
	for _, name := range frames {
		traces := make([]Trace, 0, len(zones))
		for _, z := range zones {
			traces = append(traces, buildTrace(name, z, colors[z], sizeRef, byFrame[name]))
		}
		fig.Frames = append(fig.Frames, Frame{Name: name, Data: traces})
	}
	fig.Data = fig.Frames[0].Data
	fig.Layout = buildLayout(ds.Bounds(), frames)
	return fig, nil
}

func buildTrace(frame, zone, color string, sizeRef float64, rows []models.EnrichedRecord) Trace {
	t := Trace{
		Type:         "scatter",
		Mode:         "markers+text",
		Name:         zone,
		LegendGroup:  zone,
		ShowLegend:   true,
		IDs:          []string{},
		X:            []*float64{},
		Y:            []*float64{},
		Text:         []string{},
		TextPosition: "top center",
		HoverText:    []string{},
		CustomData:   [][]int64{},
		HoverTemplate: "<b>%{hovertext}</b><br><br>Date=" + frame +
			"<br>Zones=" + zone +
			"<br>Test Positivity Rate(%)=%{x}<br>Tests Per Million=%{y}" +
			"<br>Confirmed=%{marker.size}<br>Abbreviation=%{text}" +
			"<br>Tests Conducted=%{customdata[0]}<extra></extra>",
		Marker: Marker{
			Color:    color,
			Size:     []int64{},
			SizeMode: "area",
			SizeRef:  sizeRef,
			Opacity:  0.6,
		},
	}
	for _, r := range rows {
		if zoneOf(r) != zone {
			continue
		}
		t.IDs = append(t.IDs, r.State)
		t.X = append(t.X, finite(r.TestPosRate))
		t.Y = append(t.Y, finite(r.TestPer1M))
		t.Text = append(t.Text, r.Abbr())
		t.HoverText = append(t.HoverText, r.State)
		t.CustomData = append(t.CustomData, []int64{r.Tested})
		t.Marker.Size = append(t.Marker.Size, r.Confirmed)
	}
	return t
}

func buildLayout(bounds models.AxisBounds, frames []string) Layout {
	playArgs := map[string]any{
		"frame":       map[string]any{"duration": 500, "redraw": false},
		"mode":        "immediate",
		"fromcurrent": true,
		"transition":  map[string]any{"duration": 500, "easing": "linear"},
	}
	stepArgs := map[string]any{
		"frame":       map[string]any{"duration": 0, "redraw": false},
		"mode":        "immediate",
		"fromcurrent": true,
		"transition":  map[string]any{"duration": 0, "easing": "linear"},
	}

	steps := make([]SliderStep, 0, len(frames))
	for _, f := range frames {
		steps = append(steps, SliderStep{Label: f, Method: "animate", Args: []any{[]string{f}, stepArgs}})
	}

	return Layout{
		Width:  figureWidth,
		Height: figureHeight,
		XAxis: Axis{
			Title:      Title{Text: "Test Positivity Rate(%)"},
			Range:      [2]float64{0, bounds.MaxPosRate},
			ShowLine:   true,
			Ticks:      "outside",
			Automargin: true,
		},
		YAxis: Axis{
			Title:      Title{Text: "Tests Per Million"},
			Range:      [2]float64{0, bounds.MaxPer1M},
			ShowLine:   true,
			Ticks:      "outside",
			Automargin: true,
		},
		Legend:       Legend{Title: Title{Text: "Zones"}, ItemSizing: "constant"},
		PlotBGColor:  "white",
		PaperBGColor: "white",
		UpdateMenus: []UpdateMenu{{
			Type:       "buttons",
			Direction:  "left",
			ShowActive: false,
			X:          0.1,
			Y:          0,
			XAnchor:    "right",
			YAnchor:    "top",
			Pad:        map[string]int{"r": 10, "t": 70},
			Buttons: []Button{
				{Label: "&#9654;", Method: "animate", Args: []any{nil, playArgs}},
				{Label: "&#9724;", Method: "animate", Args: []any{[]any{nil}, stepArgs}},
			},
		}},
		Sliders: []Slider{{
			Active:       0,
			X:            0.1,
			Y:            0,
			Len:          0.9,
			XAnchor:      "left",
			YAnchor:      "top",
			Pad:          map[string]int{"b": 10, "t": 60},
			CurrentValue: map[string]any{"prefix": "Date="},
			Steps:        steps,
		}},
	}
}

func zoneOf(r models.EnrichedRecord) string {
	if r.Auxiliary == nil || r.Auxiliary.Zone == "" {
		return unmatchedZone
	}
	return r.Auxiliary.Zone
}

// finite maps NaN and infinities to nil so they marshal as JSON null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// render/page.go
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

//go:embed templates/dashboard.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html.tmpl"))

// PageOptions controls the static parts of the dashboard page.
type PageOptions struct {
	Title     string
	PlotlyURL string
	SourceURL string
}

// DefaultPageOptions returns the page's standard title, Plotly build and source credit.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		Title:     "Statewise COVID-19 Testing in India",
		PlotlyURL: "https://cdn.plot.ly/plotly-2.35.2.min.js",
		SourceURL: "https://api.covid19india.org",
	}
}

type pageData struct {
	PageOptions
	Figure template.JS
}

// Page renders the full dashboard document once. The result is served as-is to every viewer.
func Page(ds Dataset, opts PageOptions) ([]byte, error) {
	fig, err := BuildFigure(ds)
	if err != nil {
		return nil, err
	}
	// json.Marshal escapes <, > and &, so the figure is safe inside a <script> element.
	figJSON, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("marshal figure: %w", err)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{PageOptions: opts, Figure: template.JS(figJSON)}); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

var blankLines = regexp.MustCompile(`\n\s*\n+`)

// PageText returns the readable text of a rendered page without scripts and styles.
func PageText(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	text := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text), nil
}

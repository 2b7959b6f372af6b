// Package plot renders a report's time series as a standalone SVG line
// chart for the `plot` subcommand. No repository in the example corpus
// carries a charting library (see DESIGN.md) — this generates minimal SVG
// by hand with the standard library's strings.Builder, the same way the
// teacher favors small, dependency-free formatting helpers (e.g.
// internal/output/terminal.go's box-drawing) over pulling in a library for
// simple string assembly.
package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrpcrate/jrpcrate/internal/report"
)

const (
	width      = 960
	height     = 360
	marginLeft = 60
	marginTop  = 20
	marginRite = 20
	marginBot  = 40
)

// Series selects which field of a TimeSeriesPoint to plot.
type Series string

const (
	SeriesThroughput  Series = "throughput"
	SeriesP50         Series = "p50"
	SeriesP99         Series = "p99"
	SeriesSuccessRate Series = "success_rate"
)

var seriesColor = map[Series]string{
	SeriesThroughput:  "#2563eb",
	SeriesP50:         "#16a34a",
	SeriesP99:         "#dc2626",
	SeriesSuccessRate: "#9333ea",
}

// palette colors additional overlaid reports (the current run's baselines)
// when more than one report contributes lines to the same chart.
var palette = []string{"#2563eb", "#16a34a", "#dc2626", "#9333ea", "#ea580c", "#0891b2", "#ca8a04", "#db2777"}

func paletteColor(i int) string { return palette[i%len(palette)] }

// Overlay is one report's time series contributing lines to a chart,
// labeled for the legend — used by RenderOverlay to compare a run against
// one or more baseline reports on the same axes.
type Overlay struct {
	Label  string
	Points []report.TimeSeriesPoint
}

// Render builds a single-series SVG line chart. Equivalent to
// RenderMulti(points, []Series{series}).
func Render(points []report.TimeSeriesPoint, series Series) string {
	return RenderMulti(points, []Series{series})
}

// RenderMulti overlays one polyline per series on a shared chart, sharing a
// single y-axis scale across all of them — used for `plot --success-rate
// --throughput`, where both series share the same 0-100-ish magnitude, and
// for any other multi-series combination the CLI chooses to pass through.
// Equivalent to RenderOverlay with a single, unlabeled overlay.
func RenderMulti(points []report.TimeSeriesPoint, series []Series) string {
	return RenderOverlay([]Overlay{{Points: points}}, series)
}

// RenderOverlay draws one polyline per (overlay, series) pair on a shared
// chart and y-axis scale — used for `plot --baseline PATH+`, which overlays
// one or more baseline reports' series alongside the current report's, and
// for plain single-report plots (a single, unlabeled Overlay). Bucket index
// (not wall-clock time) is the x-axis, since bucket width is constant and
// run duration can be long.
func RenderOverlay(overlays []Overlay, series []Series) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", width, height)

	title := titleFor(series)
	fmt.Fprintf(&b, `<text x="%d" y="16" font-family="monospace" font-size="14" font-weight="bold">%s</text>`+"\n",
		marginLeft, escapeText(title))

	type line struct {
		label  string
		values []float64
	}
	var lines []line
	maxPoints := 0
	for _, ov := range overlays {
		if len(ov.Points) > maxPoints {
			maxPoints = len(ov.Points)
		}
		for _, s := range series {
			label := seriesTitle(s)
			if len(overlays) > 1 && ov.Label != "" {
				label = ov.Label + ": " + label
			}
			lines = append(lines, line{label: label, values: extract(ov.Points, s)})
		}
	}

	if maxPoints == 0 {
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="monospace" font-size="12">no data</text>`+"\n",
			marginLeft, height/2)
		b.WriteString("</svg>\n")
		return b.String()
	}

	allValues := make([][]float64, len(lines))
	for i, l := range lines {
		allValues[i] = l.values
	}

	lo, hi := combinedBounds(allValues)
	plotW := float64(width - marginLeft - marginRite)
	plotH := float64(height - marginTop - marginBot)
	axisY := func(v float64) float64 {
		if hi == lo {
			return marginTop + plotH
		}
		return marginTop + plotH*(1-(v-lo)/(hi-lo))
	}
	axisX := func(i int) float64 {
		if maxPoints == 1 {
			return marginLeft
		}
		return float64(marginLeft) + plotW*float64(i)/float64(maxPoints-1)
	}

	renderAxes(&b, lo, hi)
	labels := make([]string, len(lines))
	colors := make([]string, len(lines))
	for i, l := range lines {
		if len(overlays) > 1 {
			colors[i] = paletteColor(i)
		} else {
			colors[i] = colorFor(series[i%len(series)])
		}
		labels[i] = l.label
		if len(l.values) == 0 {
			continue
		}
		renderPolyline(&b, l.values, axisX, axisY, colors[i])
	}
	renderLegendLines(&b, labels, colors)

	b.WriteString("</svg>\n")
	return b.String()
}

// WriteSVG renders series and writes it to path.
func WriteSVG(path string, points []report.TimeSeriesPoint, series Series) error {
	return WriteSVGMulti(path, points, []Series{series})
}

// WriteSVGMulti renders an overlay of series and writes it to path.
func WriteSVGMulti(path string, points []report.TimeSeriesPoint, series []Series) error {
	return WriteSVGOverlay(path, []Overlay{{Points: points}}, series)
}

// WriteSVGOverlay renders series across one or more report overlays and
// writes the result to path, creating parent directories as needed.
func WriteSVGOverlay(path string, overlays []Overlay, series []Series) error {
	svg := RenderOverlay(overlays, series)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write plot %s: %w", path, err)
	}
	return nil
}

func extract(points []report.TimeSeriesPoint, series Series) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		switch series {
		case SeriesThroughput:
			out[i] = p.ThroughputRPS
		case SeriesP50:
			out[i] = float64(p.LatencyMicros["p50"]) / 1000 // ms
		case SeriesP99:
			out[i] = float64(p.LatencyMicros["p99"]) / 1000 // ms
		case SeriesSuccessRate:
			out[i] = p.SuccessRate
		default:
			out[i] = p.ThroughputRPS
		}
	}
	return out
}

func seriesTitle(series Series) string {
	switch series {
	case SeriesThroughput:
		return "throughput (req/s)"
	case SeriesP50:
		return "p50 latency (ms)"
	case SeriesP99:
		return "p99 latency (ms)"
	case SeriesSuccessRate:
		return "success rate (%)"
	default:
		return string(series)
	}
}

func titleFor(series []Series) string {
	titles := make([]string, len(series))
	for i, s := range series {
		titles[i] = seriesTitle(s)
	}
	return strings.Join(titles, "  vs.  ")
}

func colorFor(s Series) string {
	if c, ok := seriesColor[s]; ok {
		return c
	}
	return "#2563eb"
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > 0 {
		lo = 0 // always anchor the axis at zero so the chart reads honestly
	}
	return lo, hi
}

func combinedBounds(series [][]float64) (lo, hi float64) {
	first := true
	for _, values := range series {
		if len(values) == 0 {
			continue
		}
		l, h := bounds(values)
		if first {
			lo, hi = l, h
			first = false
			continue
		}
		if l < lo {
			lo = l
		}
		if h > hi {
			hi = h
		}
	}
	return lo, hi
}

func renderAxes(b *strings.Builder, lo, hi float64) {
	fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black" stroke-width="1"/>`+"\n",
		marginLeft, marginTop, marginLeft, height-marginBot)
	fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black" stroke-width="1"/>`+"\n",
		marginLeft, height-marginBot, width-marginRite, height-marginBot)

	fmt.Fprintf(b, `<text x="2" y="%d" font-family="monospace" font-size="11">%.1f</text>`+"\n",
		marginTop+4, hi)
	fmt.Fprintf(b, `<text x="2" y="%d" font-family="monospace" font-size="11">%.1f</text>`+"\n",
		height-marginBot, lo)
}

func renderPolyline(b *strings.Builder, values []float64, axisX func(int) float64, axisY func(float64) float64, color string) {
	points := make([]string, len(values))
	for i, v := range values {
		points[i] = fmt.Sprintf("%.1f,%.1f", axisX(i), axisY(v))
	}
	fmt.Fprintf(b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`+"\n",
		color, strings.Join(points, " "))
}

func renderLegendLines(b *strings.Builder, labels, colors []string) {
	if len(labels) < 2 {
		return
	}
	y := marginTop + 16
	for i, label := range labels {
		fmt.Fprintf(b, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/>`+"\n",
			width-marginRite-160, y-9, colors[i])
		fmt.Fprintf(b, `<text x="%d" y="%d" font-family="monospace" font-size="11">%s</text>`+"\n",
			width-marginRite-144, y, escapeText(label))
		y += 16
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

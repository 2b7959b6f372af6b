package cliapp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrpcrate/jrpcrate/internal/report"
	"github.com/jrpcrate/jrpcrate/internal/render/plot"
)

func TestSelectSeriesCombinesThroughputAndSuccessRate(t *testing.T) {
	series := selectSeries(true, 0, true)
	require.Equal(t, []plot.Series{plot.SeriesThroughput, plot.SeriesSuccessRate}, series)
}

func TestSelectSeriesPercentileBelow99IsP50(t *testing.T) {
	series := selectSeries(false, 50, false)
	require.Equal(t, []plot.Series{plot.SeriesP50}, series)
}

func TestSelectSeriesPercentileAtOrAbove99IsP99(t *testing.T) {
	series := selectSeries(false, 99, false)
	require.Equal(t, []plot.Series{plot.SeriesP99}, series)
}

func TestSelectSeriesEmptyWhenNothingChosen(t *testing.T) {
	require.Empty(t, selectSeries(false, 0, false))
}

func writeTestReport(t *testing.T, path string, rps float64) {
	t.Helper()
	doc := report.Document{
		SchemaVersion: report.SchemaVersion,
		TimeSeries: []report.TimeSeriesPoint{
			{ThroughputRPS: rps, LatencyMicros: map[string]int64{"p50": 1000}},
			{ThroughputRPS: rps * 2, LatencyMicros: map[string]int64{"p50": 1100}},
		},
	}
	require.NoError(t, report.Write(path, doc))
}

// TestRunPlotOverlaysBaselineReports covers spec.md §6's
// `plot --baseline PATH+`: one or more baseline report paths must
// contribute their own series to the same chart, not be silently ignored.
func TestRunPlotOverlaysBaselineReports(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "current.json")
	baseline := filepath.Join(dir, "baseline.json")
	writeTestReport(t, current, 100)
	writeTestReport(t, baseline, 50)

	err := runPlot(current, []string{baseline}, true, 0, false, "")
	require.NoError(t, err)

	svg, err := os.ReadFile(current + ".svg")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(svg), "<polyline"))
	require.Contains(t, string(svg), filepath.Base(current))
	require.Contains(t, string(svg), filepath.Base(baseline))
}

func TestRunPlotFailsOnUnreadableBaseline(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "current.json")
	writeTestReport(t, current, 100)

	err := runPlot(current, []string{filepath.Join(dir, "missing.json")}, true, 0, false, "")
	require.Error(t, err)
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, ExitBaselineIO, ee.Code)
}

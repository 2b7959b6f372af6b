package plot

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrpcrate/jrpcrate/internal/report"
)

func samplePoints() []report.TimeSeriesPoint {
	return []report.TimeSeriesPoint{
		{ThroughputRPS: 10, LatencyMicros: map[string]int64{"p50": 1000, "p99": 5000}},
		{ThroughputRPS: 20, LatencyMicros: map[string]int64{"p50": 1200, "p99": 6000}},
		{ThroughputRPS: 15, LatencyMicros: map[string]int64{"p50": 1100, "p99": 5500}},
	}
}

func TestRenderProducesValidSVGEnvelope(t *testing.T) {
	svg := Render(samplePoints(), SeriesThroughput)
	require.True(t, strings.HasPrefix(svg, "<svg"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))
	require.Contains(t, svg, "polyline")
	require.Contains(t, svg, "throughput")
}

func TestRenderHandlesEmptySeries(t *testing.T) {
	svg := Render(nil, SeriesP99)
	require.Contains(t, svg, "no data")
}

func TestRenderP50UsesMillisecondScale(t *testing.T) {
	svg := Render(samplePoints(), SeriesP50)
	require.Contains(t, svg, "p50 latency (ms)")
}

func TestWriteSVGWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.svg")
	require.NoError(t, WriteSVG(path, samplePoints(), SeriesThroughput))
}

func TestBoundsAnchorsAtZeroWhenAllPositive(t *testing.T) {
	lo, hi := bounds([]float64{5, 10, 20})
	require.Equal(t, 0.0, lo)
	require.Equal(t, 20.0, hi)
}

func TestRenderMultiOverlaysSeriesWithLegend(t *testing.T) {
	svg := RenderMulti(samplePoints(), []Series{SeriesThroughput, SeriesSuccessRate})
	require.Equal(t, 2, strings.Count(svg, "<polyline"))
	require.Contains(t, svg, "success rate (%)")
	require.Contains(t, svg, "throughput (req/s)")
}

func TestRenderMultiSingleSeriesOmitsLegend(t *testing.T) {
	svg := RenderMulti(samplePoints(), []Series{SeriesThroughput})
	require.NotContains(t, svg, "<rect x=\"") // no legend swatch with only one series
}

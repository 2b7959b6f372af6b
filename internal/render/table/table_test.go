package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatMicrosScalesUnits(t *testing.T) {
	require.Equal(t, "—", formatMicros(0))
	require.Equal(t, "500µs", formatMicros(500))
	require.Equal(t, "1.5ms", formatMicros(1500))
	require.Equal(t, "2.00s", formatMicros(2_000_000))
}

func TestSuccessRateHandlesZeroCount(t *testing.T) {
	require.Equal(t, 0.0, successRate(0, 0))
	require.InDelta(t, 95.0, successRate(200, 190), 0.01)
}

func TestFormatPctThroughputDirection(t *testing.T) {
	require.Contains(t, formatPctThroughput(12.5), "+12.5%")
	require.Contains(t, formatPctThroughput(-8.0), "-8.0%")
}

func TestFormatPctLatencyDirection(t *testing.T) {
	// Positive latency change (slower) should still render the sign.
	require.Contains(t, formatPctLatency(20.0), "+20.0%")
	require.Contains(t, formatPctLatency(-5.0), "-5.0%")
}

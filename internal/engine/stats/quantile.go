// Package stats consumes the executor's sample stream and maintains
// running counts and streaming latency/throughput statistics, globally and
// per method. It is grounded on the teacher's internal/metrics.Collector
// (aggregate-by-key, classify errors by kind, compute percentiles) and
// internal/stats.CalculateTailLatency, generalized from "batch-collect then
// compute once" to "update a streaming sketch per sample, forever," and from
// nearest-rank percentiles over a stored slice to an HDR histogram so
// latencies need not be retained in memory.
package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Quantiles are the reportable latency points spec.md §4.6 requires.
type Quantiles struct {
	Min, P25, P50, P75, P90, P95, P99, P999, P9999, Max time.Duration
}

const (
	histogramMinValue        = 1
	histogramMaxValueMicros  = int64(10 * time.Minute / time.Microsecond)
	histogramSignificantFigs = 3
)

// newHistogram builds an HDR histogram tracking latencies in microseconds,
// up to 10 minutes, with 3 significant figures — generous enough for both
// sub-millisecond RPC latencies and pathological multi-second stragglers.
func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(histogramMinValue, histogramMaxValueMicros, histogramSignificantFigs)
}

// recordLatency saturates rather than errors on out-of-range values — a
// stalled connection producing a latency past the histogram's ceiling
// should not crash the run, it should just pile up at Max.
func recordLatency(h *hdrhistogram.Histogram, d time.Duration) {
	micros := d.Microseconds()
	if micros < histogramMinValue {
		micros = histogramMinValue
	}
	if micros > histogramMaxValueMicros {
		micros = histogramMaxValueMicros
	}
	_ = h.RecordValue(micros)
}

// histogramHandle is a one-off HDR histogram used by a single throughput
// bucket. Kept distinct from entry's long-lived histograms since a bucket's
// sketch only needs to survive until the bucket is finalized.
type histogramHandle struct {
	h *hdrhistogram.Histogram
}

func newHistogramHandle() *histogramHandle {
	return &histogramHandle{h: newHistogram()}
}

func (h *histogramHandle) record(d time.Duration) { recordLatency(h.h, d) }

func (h *histogramHandle) quantiles() Quantiles { return quantilesOf(h.h) }

// quantilesOf reads the required quantile set off h.
func quantilesOf(h *hdrhistogram.Histogram) Quantiles {
	at := func(q float64) time.Duration {
		return time.Duration(h.ValueAtQuantile(q)) * time.Microsecond
	}
	return Quantiles{
		Min:   time.Duration(h.Min()) * time.Microsecond,
		P25:   at(25),
		P50:   at(50),
		P75:   at(75),
		P90:   at(90),
		P95:   at(95),
		P99:   at(99),
		P999:  at(99.9),
		P9999: at(99.99),
		Max:   time.Duration(h.Max()) * time.Microsecond,
	}
}

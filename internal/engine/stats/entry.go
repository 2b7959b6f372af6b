package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
)

// entry accumulates counts and both latency views for one key (global or a
// single method). Mirrors the fields the teacher's ProviderMetrics
// computes in one shot, but updated incrementally per sample instead of
// over a stored slice.
type entry struct {
	count        int64
	errByKind    map[sample.Outcome]int64
	serviceTime  *hdrhistogram.Histogram
	responseTime *hdrhistogram.Histogram
	started      time.Time
}

func newEntry() *entry {
	return &entry{
		errByKind:    make(map[sample.Outcome]int64),
		serviceTime:  newHistogram(),
		responseTime: newHistogram(),
		started:      time.Now(),
	}
}

func (e *entry) record(c sample.Call) {
	e.count++
	if c.Outcome.IsError() {
		e.errByKind[c.Outcome]++
	}
	recordLatency(e.serviceTime, c.ServiceTime())
	recordLatency(e.responseTime, c.ResponseTime())
}

// okCount derives success count from count - sum(errByKind), avoiding a
// separate counter that could drift out of sync.
func (e *entry) okCount() int64 {
	errs := int64(0)
	for _, n := range e.errByKind {
		errs += n
	}
	return e.count - errs
}

func (e *entry) throughputRPS() float64 {
	elapsed := time.Since(e.started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(e.count) / elapsed
}

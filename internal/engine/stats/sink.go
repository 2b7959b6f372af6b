package stats

import (
	"context"
	"time"

	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
)

// Sink is the single goroutine-confined consumer of a run's cycle sample
// stream. It never drops a sample (spec.md §4.6's invariant — backpressure
// is entirely the executor's concern, upstream of this point).
type Sink struct {
	Aggregator *Aggregator
	Series     *Series

	finalizeEvery time.Duration
}

// NewSink builds a Sink with a fresh Aggregator and a Series anchored at
// the given run start time.
func NewSink(bucketWidth time.Duration, runStart time.Time) *Sink {
	return &Sink{
		Aggregator:    NewAggregator(),
		Series:        NewSeries(bucketWidth, runStart),
		finalizeEvery: 250 * time.Millisecond,
	}
}

// Run consumes cycles until the channel closes or ctx is cancelled, folding
// each into the aggregator and the throughput series, and periodically
// finalizing buckets whose grace period (2x current global p99 service
// time) has elapsed.
func (s *Sink) Run(ctx context.Context, cycles <-chan sample.Cycle) {
	ticker := time.NewTicker(s.finalizeEvery)
	defer ticker.Stop()

	for {
		select {
		case c, ok := <-cycles:
			if !ok {
				s.Series.FlushAll()
				return
			}
			for _, call := range c.Calls {
				s.Aggregator.Record(call)
			}
			s.Series.RecordCycle(c)
		case <-ticker.C:
			s.finalize(time.Now())
		case <-ctx.Done():
			s.Series.FlushAll()
			return
		}
	}
}

func (s *Sink) finalize(now time.Time) {
	grace := 2 * s.Aggregator.Global().ServiceTime.P99
	if grace <= 0 {
		grace = 2 * time.Second
	}
	s.Series.Finalize(now, grace)
}

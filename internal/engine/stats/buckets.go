package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
)

// Bucket is one finalized throughput time-series point, in the shape
// spec.md §6's report "time_series" entries need.
type Bucket struct {
	Start, End    time.Time
	OkCycles      int
	ErrCycles     int
	OkCalls       int
	ErrCalls      int
	Latency       Quantiles
	SuccessRate   float64
	ThroughputRPS float64
}

// bucketLive is a fixed-width window's running totals plus its own HDR
// histogram, per spec.md §4.6's "per-bucket quantile sketch."
type bucketLive struct {
	start, end time.Time
	okCycles   int
	errCycles  int
	okCalls    int
	errCalls   int
	latency    *histogramHandle
}

// Series accumulates per-bucket throughput stats and finalizes buckets once
// they're old enough that no in-flight cycle could still land in them
// (spec.md §5: buckets finalize after a grace period of 2x p99 past the
// bucket's end).
type Series struct {
	mu        sync.Mutex
	width     time.Duration
	anchor    time.Time
	live      map[int64]*bucketLive
	finalized []Bucket
}

// NewSeries builds a throughput time-series with the given bucket width.
// Zero width uses the spec default of 1 second.
func NewSeries(width time.Duration, anchor time.Time) *Series {
	if width <= 0 {
		width = time.Second
	}
	return &Series{
		width:  width,
		anchor: anchor,
		live:   make(map[int64]*bucketLive),
	}
}

func (s *Series) indexFor(t time.Time) int64 {
	return int64(t.Sub(s.anchor) / s.width)
}

// RecordCycle folds one completed cycle into the bucket its EndAt falls in.
func (s *Series) RecordCycle(c sample.Cycle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexFor(c.EndAt)
	b, ok := s.live[idx]
	if !ok {
		b = &bucketLive{
			start:   s.anchor.Add(time.Duration(idx) * s.width),
			end:     s.anchor.Add(time.Duration(idx+1) * s.width),
			latency: newHistogramHandle(),
		}
		s.live[idx] = b
	}

	if c.ErrCount > 0 {
		b.errCycles++
	} else {
		b.okCycles++
	}
	for _, call := range c.Calls {
		if call.Outcome.IsError() {
			b.errCalls++
		} else {
			b.okCalls++
			b.latency.record(call.ServiceTime())
		}
	}
}

// Finalize moves every bucket whose end-of-grace-period has passed now into
// the finalized list, in order. grace is typically 2x the current global
// p99 service-time latency.
func (s *Series) Finalize(now time.Time, grace time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ready []int64
	for idx, b := range s.live {
		if now.Sub(b.end) >= grace {
			ready = append(ready, idx)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	for _, idx := range ready {
		s.finalized = append(s.finalized, finalizeBucket(s.live[idx]))
		delete(s.live, idx)
	}
}

func finalizeBucket(b *bucketLive) Bucket {
	total := b.okCycles + b.errCycles
	successRate := 0.0
	if total > 0 {
		successRate = float64(b.okCycles) / float64(total) * 100
	}

	width := b.end.Sub(b.start).Seconds()
	throughput := 0.0
	if width > 0 {
		throughput = float64(b.okCalls+b.errCalls) / width
	}

	return Bucket{
		Start:         b.start,
		End:           b.end,
		OkCycles:      b.okCycles,
		ErrCycles:     b.errCycles,
		OkCalls:       b.okCalls,
		ErrCalls:      b.errCalls,
		Latency:       b.latency.quantiles(),
		SuccessRate:   successRate,
		ThroughputRPS: throughput,
	}
}

// Finalized returns every bucket finalized so far, oldest first.
func (s *Series) Finalized() []Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Bucket, len(s.finalized))
	copy(out, s.finalized)
	return out
}

// FlushAll finalizes every remaining live bucket unconditionally; called
// once the run has fully drained and no more cycles can arrive.
func (s *Series) FlushAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var idxs []int64
	for idx := range s.live {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
	for _, idx := range idxs {
		s.finalized = append(s.finalized, finalizeBucket(s.live[idx]))
		delete(s.live, idx)
	}
}

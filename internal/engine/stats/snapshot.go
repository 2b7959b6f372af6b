package stats

import "github.com/jrpcrate/jrpcrate/internal/engine/sample"

// Snapshot is the read-only view of one entry's accumulated statistics, in
// the shape spec.md §6's report "aggregate"/"per_method" objects need.
type Snapshot struct {
	Count         int64
	OkCount       int64
	ErrByKind     map[sample.Outcome]int64
	ServiceTime   Quantiles
	ResponseTime  Quantiles
	ThroughputRPS float64
}

func (e *entry) snapshot() Snapshot {
	errCopy := make(map[sample.Outcome]int64, len(e.errByKind))
	for k, v := range e.errByKind {
		errCopy[k] = v
	}
	return Snapshot{
		Count:         e.count,
		OkCount:       e.okCount(),
		ErrByKind:     errCopy,
		ServiceTime:   quantilesOf(e.serviceTime),
		ResponseTime:  quantilesOf(e.responseTime),
		ThroughputRPS: e.throughputRPS(),
	}
}

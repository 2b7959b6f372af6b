package stats

import (
	"sync"

	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
)

// Aggregator holds the global entry plus one entry per method, mutated only
// from the statistics sink goroutine (spec.md §5's "statistics sketches are
// confined to the statistics task"). Global and PerMethod are safe to call
// concurrently; they are the only methods a report writer or progress
// callback should call from outside that goroutine.
type Aggregator struct {
	mu        sync.RWMutex
	global    *entry
	perMethod map[string]*entry
}

// NewAggregator builds an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		global:    newEntry(),
		perMethod: make(map[string]*entry),
	}
}

// Record folds one call sample into the global and per-method entries.
func (a *Aggregator) Record(c sample.Call) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.global.record(c)
	m, ok := a.perMethod[c.Method]
	if !ok {
		m = newEntry()
		a.perMethod[c.Method] = m
	}
	m.record(c)
}

// Global returns a point-in-time snapshot of the aggregate statistics.
func (a *Aggregator) Global() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.global.snapshot()
}

// PerMethod returns a point-in-time snapshot for every method seen so far.
func (a *Aggregator) PerMethod() map[string]Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[string]Snapshot, len(a.perMethod))
	for method, e := range a.perMethod {
		out[method] = e.snapshot()
	}
	return out
}

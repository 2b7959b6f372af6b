package runner

import (
	"sync"

	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
)

// failureMonitor tracks a streak of consecutive fully-failed cycles to
// implement spec.md §4.7's abort condition: at least
// consecutiveFailureThreshold consecutive cycles, all of which failed,
// dispatching at least minDispatchedForAbort calls in total across the
// streak. The dispatched-call minimum accumulates over the whole streak
// rather than applying per cycle, so a workload with few calls per cycle
// (the spec's own single-call-per-cycle examples included) still trips the
// condition once enough consecutive cycles have failed — only the streak's
// length changes, never whether it's reachable.
type failureMonitor struct {
	mu                 sync.Mutex
	consecutive        int
	dispatchedInStreak int64
	totalCycles        uint64
}

func newFailureMonitor() *failureMonitor {
	return &failureMonitor{}
}

func (f *failureMonitor) observe(c sample.Cycle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.totalCycles++

	dispatched := int64(c.OkCount + c.ErrCount)
	allFailed := dispatched > 0 && c.OkCount == 0

	if allFailed {
		f.consecutive++
		f.dispatchedInStreak += dispatched
	} else {
		f.consecutive = 0
		f.dispatchedInStreak = 0
	}
}

func (f *failureMonitor) tripped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.consecutive >= consecutiveFailureThreshold && f.dispatchedInStreak >= minDispatchedForAbort
}

func (f *failureMonitor) seen() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalCycles
}

package workload

import (
	"fmt"
	"math/rand/v2"
)

// Workload is an ordered, immutable list of concrete calls plus the
// per-cycle ordering policy that determines what each cycle dispatches.
type Workload struct {
	calls  []ConcreteCall
	policy Policy
}

// New constructs a Workload. The call list must be non-empty.
func New(calls []ConcreteCall, policy Policy) (*Workload, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("workload: call list must be non-empty")
	}
	// Defensive copy so the Workload is immutable regardless of what the
	// caller does with its slice afterward.
	owned := make([]ConcreteCall, len(calls))
	copy(owned, calls)
	return &Workload{calls: owned, policy: policy}, nil
}

// Policy returns the workload's fixed cycle-ordering policy.
func (w *Workload) Policy() Policy { return w.policy }

// Len returns the number of distinct concrete calls in the workload.
func (w *Workload) Len() int { return len(w.calls) }

// Calls returns a defensive copy of the full stored call list, in order.
func (w *Workload) Calls() []ConcreteCall {
	out := make([]ConcreteCall, len(w.calls))
	copy(out, w.calls)
	return out
}

// cycleSource derives a goroutine-local deterministic RNG for cycle i, seeded
// from the run seed so that cycle_calls(i) is bit-identical across processes
// for a fixed (seed, i) pair, independent of how many cycles ran before it.
func cycleSource(runSeed uint64, cycleIndex uint64) *rand.Rand {
	return rand.New(rand.NewPCG(runSeed, cycleIndex))
}

// CycleCalls returns the call sequence for cycle i. Serial ignores i and the
// seed entirely; Shuffle and Choose derive a fresh RNG from (seed, i) so
// that repeated calls for the same (seed, i) always produce the same result.
func (w *Workload) CycleCalls(runSeed uint64, cycleIndex uint64) []ConcreteCall {
	switch w.policy {
	case Serial:
		return w.Calls()

	case Shuffle:
		rng := cycleSource(runSeed, cycleIndex)
		out := w.Calls()
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out

	case Choose:
		rng := cycleSource(runSeed, cycleIndex)
		idx := rng.IntN(len(w.calls))
		return []ConcreteCall{w.calls[idx]}

	default:
		return w.Calls()
	}
}

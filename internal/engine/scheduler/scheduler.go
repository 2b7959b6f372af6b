// Package scheduler emits cycle-start tickets at an open-loop target rate,
// independent of whether earlier cycles have completed. This is the
// coordinated-omission-free discipline spec.md §4.4/§9 calls for: a
// dedicated goroutine owns the wall clock and never waits on a response.
//
// Structurally this plays the role the teacher's cmd/monitor ticker loop
// plays (internal/commands/monitor.go's time.NewTicker + select event loop),
// generalized from "fire every fixed interval forever" to "fire ticket i at
// t0 + i/R, one ticket per cycle, for a bounded number of cycles or a
// bounded duration."
package scheduler

import (
	"context"
	"sync/atomic"
	"time"
)

// State is one of the scheduler's four lifecycle states.
type State int32

const (
	Idle State = iota
	Running
	Draining
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Ticket is a scheduled cycle-start signal carrying its target wall-clock time.
type Ticket struct {
	Index       uint64
	ScheduledAt time.Time
}

// Config configures one scheduler run.
type Config struct {
	// Rate is the target cycles/sec. Rate <= 0 means "as fast as possible":
	// tickets are emitted with no inter-ticket wait at all, bounded only by
	// whatever concurrency cap the executor applies downstream.
	Rate float64
	// Duration bounds the run by wall-clock time. Zero means unbounded (use
	// CycleCount instead).
	Duration time.Duration
	// CycleCount bounds the run by ticket count. Zero means unbounded (use
	// Duration instead). At least one of Duration/CycleCount must be set.
	CycleCount uint64
	// TicketBuffer sizes the output channel. The scheduler itself never
	// drops a ticket; backpressure and ErrOverload accounting live in the
	// executor (spec.md §4.5), so this buffer only needs to be large enough
	// that a busy executor doesn't distort the scheduler's own timing loop.
	TicketBuffer int
}

// Scheduler emits Tickets for one run. It is not reusable across runs.
type Scheduler struct {
	cfg   Config
	state atomic.Int32
	t0    time.Time
}

// New constructs a Scheduler in the Idle state.
func New(cfg Config) *Scheduler {
	if cfg.TicketBuffer <= 0 {
		cfg.TicketBuffer = 4096
	}
	s := &Scheduler{cfg: cfg}
	s.state.Store(int32(Idle))
	return s
}

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// StartedAt returns the wall-clock time the schedule is anchored to (t0).
// Valid only after Start has been called.
func (s *Scheduler) StartedAt() time.Time { return s.t0 }

// Start transitions Idle -> Running and begins emitting tickets on the
// returned channel. The channel is closed once the schedule's duration or
// cycle budget is exhausted (the Running -> Draining transition); the
// caller (the executor/run controller) is responsible for draining
// in-flight cycles and then calling Finish to reach Done.
func (s *Scheduler) Start(ctx context.Context) <-chan Ticket {
	s.state.Store(int32(Running))
	s.t0 = time.Now()
	out := make(chan Ticket, s.cfg.TicketBuffer)

	go s.run(ctx, out)

	return out
}

func (s *Scheduler) run(ctx context.Context, out chan<- Ticket) {
	defer close(out)
	defer s.state.CompareAndSwap(int32(Running), int32(Draining))

	for i := uint64(0); ; i++ {
		if s.cfg.CycleCount > 0 && i >= s.cfg.CycleCount {
			return
		}

		scheduledAt := s.scheduledTime(i)

		if s.cfg.Duration > 0 && scheduledAt.Sub(s.t0) >= s.cfg.Duration {
			return
		}

		if !s.waitUntil(ctx, scheduledAt) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case out <- Ticket{Index: i, ScheduledAt: scheduledAt}:
		}
	}
}

// scheduledTime computes scheduled_ts[i] = t0 + i/R. In "as fast as
// possible" mode (Rate <= 0) every ticket is due immediately.
func (s *Scheduler) scheduledTime(i uint64) time.Time {
	if s.cfg.Rate <= 0 {
		return time.Now()
	}
	offset := time.Duration(float64(i) / s.cfg.Rate * float64(time.Second))
	return s.t0.Add(offset)
}

// waitUntil blocks until the wall clock reaches target, or ctx is
// cancelled (reporting false). When target is already in the past (the
// scheduler is running behind, or Rate <= 0), it returns immediately — this
// is what lets a batch of overdue tickets drain back-to-back without losing
// their individual ScheduledAt values, satisfying the high-rate batching
// behavior spec.md §4.4 describes.
func (s *Scheduler) waitUntil(ctx context.Context, target time.Time) bool {
	d := time.Until(target)
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Finish marks the scheduler Done once its caller has confirmed every
// in-flight cycle has been drained (or the drain deadline expired).
func (s *Scheduler) Finish() { s.state.Store(int32(Done)) }

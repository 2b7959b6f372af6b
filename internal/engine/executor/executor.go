// Package executor binds scheduler tickets to workload cycles and drives
// their concurrent dispatch. It is the generalization of the teacher's
// internal/provider.ExecuteAll[T any] helper from "run one bounded batch of
// providers and collect results" to "run an open-ended stream of cycles
// under a bounded concurrency cap, with backpressure instead of unbounded
// queueing."
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/jrpcrate/jrpcrate/internal/engine/rpcclient"
	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
	"github.com/jrpcrate/jrpcrate/internal/engine/scheduler"
	"github.com/jrpcrate/jrpcrate/internal/engine/workload"
)

// Config configures one executor run.
type Config struct {
	// MaxInflight bounds total concurrent in-flight calls across all
	// cycles. Zero uses the default of 1024.
	MaxInflight int64
	// QueueDepth bounds how many scheduled-but-not-yet-dispatched tickets
	// may queue in front of the semaphore. Zero uses the default of 4096.
	// When the queue is full, the oldest queued ticket is dropped and
	// counted as sample.ErrOverload.
	QueueDepth int
	// CallTimeout bounds each individual RPC call.
	CallTimeout time.Duration
	// DrainDeadline bounds how long Run waits for in-flight cycles to
	// finish once the ticket channel closes. Zero uses the default of 30s.
	DrainDeadline time.Duration
	// RunSeed seeds the workload's per-cycle RNG stream.
	RunSeed uint64
	// BurstLimiter bounds the rate at which queued tickets are admitted
	// into dispatch. The open-loop scheduler itself never uses a limiter
	// (that would reintroduce coordinated omission), but the "as fast as
	// possible" degenerate mode (scheduler.Config.Rate <= 0) has no natural
	// pacing at all, so the runner wires one here to keep admission from
	// outrunning the concurrency cap in one uncontrolled burst. Nil means
	// no admission throttling beyond the semaphore itself.
	BurstLimiter *rate.Limiter
}

const (
	defaultMaxInflight   = 1024
	defaultQueueDepth    = 4096
	defaultDrainDeadline = 30 * time.Second
)

// Executor dispatches workload cycles for one run.
type Executor struct {
	cfg Config
	wl  *workload.Workload
	rpc *rpcclient.Client
	sem *semaphore.Weighted

	overloaded atomic.Uint64
}

// New builds an Executor bound to the given workload and RPC client.
func New(cfg Config, wl *workload.Workload, rpc *rpcclient.Client) *Executor {
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = defaultMaxInflight
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	if cfg.DrainDeadline <= 0 {
		cfg.DrainDeadline = defaultDrainDeadline
	}
	return &Executor{
		cfg: cfg,
		wl:  wl,
		rpc: rpc,
		sem: semaphore.NewWeighted(cfg.MaxInflight),
	}
}

// OverloadedCount returns the number of tickets dropped for ErrOverload so far.
func (e *Executor) OverloadedCount() uint64 { return e.overloaded.Load() }

// Run consumes tickets from the scheduler and emits one sample.Cycle per
// ticket. A ticket dropped by the bounded queue is counted and still emitted
// as a one-call cycle with outcome sample.ErrOverload and zero duration. The
// returned channel is closed once the ticket channel is closed and every
// dispatched cycle has completed or the drain deadline has elapsed.
func (e *Executor) Run(ctx context.Context, tickets <-chan scheduler.Ticket) <-chan sample.Cycle {
	out := make(chan sample.Cycle, e.cfg.QueueDepth)

	go func() {
		defer close(out)

		queue := make(chan scheduler.Ticket, e.cfg.QueueDepth)
		var wg sync.WaitGroup

		emitOverload := func(tk scheduler.Ticket) {
			e.overloaded.Add(1)
			now := time.Now()
			cycle := sample.Cycle{
				CycleID:     tk.Index,
				ScheduledAt: tk.ScheduledAt,
				StartAt:     now,
				EndAt:       now,
				ErrCount:    1,
				Calls: []sample.Call{{
					CycleID:     tk.Index,
					ScheduledAt: tk.ScheduledAt,
					StartAt:     now,
					EndAt:       now,
					Outcome:     sample.ErrOverload,
				}},
			}
			select {
			case out <- cycle:
			case <-ctx.Done():
			}
		}

		// Producer: forward tickets into the bounded queue, dropping the
		// oldest when full rather than blocking the scheduler's timing loop.
		// A dropped ticket still reaches the statistics sink as an
		// ErrOverload cycle sample — backpressure discards work, but never
		// the accounting of it (spec.md §4.6).
		go func() {
			defer close(queue)
			for tk := range tickets {
				select {
				case queue <- tk:
				default:
					var dropped scheduler.Ticket
					hadDropped := false
					select {
					case dropped = <-queue:
						hadDropped = true
					default:
					}
					select {
					case queue <- tk:
						if hadDropped {
							emitOverload(dropped)
						}
					default:
						emitOverload(tk)
						if hadDropped {
							emitOverload(dropped)
						}
					}
				}
			}
		}()

		drainCtx, cancelDrain := context.WithCancel(ctx)
		defer cancelDrain()

		for tk := range queue {
			if e.cfg.BurstLimiter != nil {
				if err := e.cfg.BurstLimiter.Wait(ctx); err != nil {
					continue
				}
			}
			if err := e.sem.Acquire(ctx, 1); err != nil {
				// Context cancelled while waiting for a slot: this ticket
				// never dispatches.
				continue
			}
			wg.Add(1)
			go func(tk scheduler.Ticket) {
				defer wg.Done()
				defer e.sem.Release(1)
				c := e.dispatch(drainCtx, tk)
				select {
				case out <- c:
				case <-ctx.Done():
				}
			}(tk)
		}

		drained := make(chan struct{})
		go func() {
			wg.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-time.After(e.cfg.DrainDeadline):
			cancelDrain()
			<-drained
		}
	}()

	return out
}

// dispatch binds one ticket to a workload cycle and fans its calls out
// concurrently via errgroup, exactly as spec.md §4.5 steps 1-4 describe.
func (e *Executor) dispatch(ctx context.Context, tk scheduler.Ticket) sample.Cycle {
	startAt := time.Now()
	calls := e.wl.CycleCalls(e.cfg.RunSeed, tk.Index)

	samples := make([]sample.Call, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			res := e.rpc.Issue(gctx, call, e.cfg.CallTimeout)
			samples[i] = sample.Call{
				CycleID:       tk.Index,
				CallIndex:     i,
				Method:        call.Method,
				ScheduledAt:   tk.ScheduledAt,
				StartAt:       res.StartAt,
				EndAt:         res.EndAt,
				Outcome:       res.Outcome,
				ResponseBytes: res.ResponseBytes,
			}
			return nil
		})
	}
	_ = g.Wait()

	endAt := time.Now()
	cycle := sample.Cycle{
		CycleID:     tk.Index,
		ScheduledAt: tk.ScheduledAt,
		StartAt:     startAt,
		EndAt:       endAt,
		Calls:       samples,
	}
	for _, s := range samples {
		if s.Outcome.IsError() {
			cycle.ErrCount++
		} else {
			cycle.OkCount++
		}
	}
	return cycle
}

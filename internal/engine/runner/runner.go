// Package runner sequences one or more engine runs — a rate sweep or an
// exp-ramp — applying a fixed cooldown between them and aborting any single
// run that sees sustained total failure, without aborting the sweep.
//
// Structurally this generalizes the teacher's top-level monitor loop
// (internal/commands/monitor.go: build providers once, loop over a bounded
// sequence of polls, collect results each iteration) from "poll forever at
// one fixed interval" to "run each point of a rate sweep in sequence, with
// a settle period between points."
package runner

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"

	xrate "golang.org/x/time/rate"

	"github.com/jrpcrate/jrpcrate/internal/engine/executor"
	"github.com/jrpcrate/jrpcrate/internal/engine/rpcclient"
	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
	"github.com/jrpcrate/jrpcrate/internal/engine/scheduler"
	"github.com/jrpcrate/jrpcrate/internal/engine/stats"
	"github.com/jrpcrate/jrpcrate/internal/engine/workload"
)

// consecutiveFailureThreshold and minDispatchedForAbort implement spec.md
// §4.7's sustained-failure abort condition: at least this many consecutive
// cycles, all failing, dispatching at least this many calls in total across
// the streak (see failureMonitor).
const (
	consecutiveFailureThreshold = 10
	minDispatchedForAbort       = 50
)

// RatePoint describes one point in a rate sweep or exp-ramp.
type RatePoint struct {
	Rate float64
}

// PlanConfig describes the sequence of runs to execute.
type PlanConfig struct {
	Rates         []float64
	ExpRamp       bool
	Duration      time.Duration
	CycleCount    uint64
	Cooldown      time.Duration
	Seed          uint64
	HasSeed       bool
	MaxInflight   int64
	CallTimeout   time.Duration
	DrainDeadline time.Duration
	BucketWidth   time.Duration
}

const defaultCooldown = 5 * time.Second

// Plan expands PlanConfig.Rates/ExpRamp into the ordered list of
// RatePoints a run sequence will execute.
func Plan(cfg PlanConfig) []RatePoint {
	if !cfg.ExpRamp {
		points := make([]RatePoint, len(cfg.Rates))
		for i, r := range cfg.Rates {
			points[i] = RatePoint{Rate: r}
		}
		return points
	}

	var target float64
	for _, r := range cfg.Rates {
		if r > target {
			target = r
		}
	}
	if target <= 0 {
		return nil
	}

	var points []RatePoint
	for step := 10.0; step < target; step *= 10 {
		points = append(points, RatePoint{Rate: step})
	}
	points = append(points, RatePoint{Rate: target})
	return points
}

// RunResult is one completed (or aborted) run's outcome.
type RunResult struct {
	Rate    float64
	Aborted bool
	Report  Report
}

// Report is the statistical outcome of one run, independent of how it gets
// serialized (internal/report owns the JSON shape).
type Report struct {
	Rate       float64
	Seed       uint64
	StartedAt  time.Time
	Duration   time.Duration
	CycleCount uint64
	Aggregate  stats.Snapshot
	PerMethod  map[string]stats.Snapshot
	TimeSeries []stats.Bucket
	Aborted    bool
}

// Controller sequences a plan of runs against a fixed workload and RPC
// client, applying a cooldown between runs.
type Controller struct {
	wl         *workload.Workload
	rpc        *rpcclient.Client
	cooldown   time.Duration
	onProgress func(rate float64, snap stats.Snapshot)
}

// New builds a Controller. Zero cooldown uses the spec default of 5s.
func New(wl *workload.Workload, rpc *rpcclient.Client, cooldown time.Duration) *Controller {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Controller{wl: wl, rpc: rpc, cooldown: cooldown}
}

// WithProgress registers a callback invoked roughly every 250ms while a run
// is active, carrying the point's target rate and its aggregate snapshot so
// far — the data behind the CLI's live progress line. Returns the receiver
// for chaining.
func (c *Controller) WithProgress(f func(rate float64, snap stats.Snapshot)) *Controller {
	c.onProgress = f
	return c
}

// deriveSeed returns cfg.Seed if HasSeed is set, otherwise a seed read from
// crypto/rand — spec.md is silent on the no-seed case; this keeps every run
// reproducible by always recording *some* seed in the report.
func deriveSeed(cfg PlanConfig) uint64 {
	if cfg.HasSeed {
		return cfg.Seed
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// RunAll executes the full plan in sequence, waiting Cooldown between runs.
// A single run aborting (sustained total failure) does not stop the
// sequence; it is recorded and the controller moves to the next point.
func (c *Controller) RunAll(ctx context.Context, cfg PlanConfig) []RunResult {
	points := Plan(cfg)
	seed := deriveSeed(cfg)

	results := make([]RunResult, 0, len(points))
	for i, p := range points {
		if ctx.Err() != nil {
			break
		}
		result := c.runOne(ctx, p, cfg, seed)
		results = append(results, result)

		if i < len(points)-1 {
			select {
			case <-time.After(c.cooldown):
			case <-ctx.Done():
				return results
			}
		}
	}
	return results
}

func (c *Controller) runOne(ctx context.Context, p RatePoint, cfg PlanConfig, seed uint64) RunResult {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(scheduler.Config{
		Rate:       p.Rate,
		Duration:   cfg.Duration,
		CycleCount: cfg.CycleCount,
	})

	execCfg := executor.Config{
		MaxInflight:   cfg.MaxInflight,
		CallTimeout:   cfg.CallTimeout,
		DrainDeadline: cfg.DrainDeadline,
		RunSeed:       seed,
	}
	if p.Rate <= 0 {
		// "As fast as possible": the scheduler applies no pacing at all, so
		// bound admission here instead of letting every queued ticket hit
		// the semaphore in one uncontrolled burst.
		maxInflight := cfg.MaxInflight
		if maxInflight <= 0 {
			maxInflight = 1024
		}
		execCfg.BurstLimiter = xrate.NewLimiter(xrate.Limit(maxInflight*4), int(maxInflight))
	}
	ex := executor.New(execCfg, c.wl, c.rpc)

	startedAt := time.Now()
	sink := stats.NewSink(cfg.BucketWidth, startedAt)

	tickets := sched.Start(runCtx)
	cycles := ex.Run(runCtx, tickets)

	monitor := newFailureMonitor()
	aborted := false

	done := make(chan struct{})
	go func() {
		defer close(done)
		sink.Run(runCtx, teeCycles(cycles, monitor))
	}()

	// Watch for sustained failure while the sink drains the stream; cancel
	// the run early if it trips, but let the sink finish flushing whatever
	// already arrived.
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if monitor.tripped() {
					aborted = true
					cancel()
					return
				}
			case <-done:
				return
			}
		}
	}()

	var progressDone chan struct{}
	if c.onProgress != nil {
		progressDone = make(chan struct{})
		go func() {
			defer close(progressDone)
			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					c.onProgress(p.Rate, sink.Aggregator.Global())
				case <-done:
					return
				}
			}
		}()
	}

	<-done
	<-watchDone
	if progressDone != nil {
		<-progressDone
	}
	sched.Finish()

	return RunResult{
		Rate:    p.Rate,
		Aborted: aborted,
		Report: Report{
			Rate:       p.Rate,
			Seed:       seed,
			StartedAt:  startedAt,
			Duration:   time.Since(startedAt),
			CycleCount: monitor.seen(),
			Aggregate:  sink.Aggregator.Global(),
			PerMethod:  sink.Aggregator.PerMethod(),
			TimeSeries: sink.Series.Finalized(),
			Aborted:    aborted,
		},
	}
}

// teeCycles forwards every cycle to the statistics sink while also feeding
// the sustained-failure monitor, without making the monitor a concern of
// the stats package itself.
func teeCycles(in <-chan sample.Cycle, m *failureMonitor) <-chan sample.Cycle {
	out := make(chan sample.Cycle, cap(in))
	go func() {
		defer close(out)
		for c := range in {
			m.observe(c)
			out <- c
		}
	}()
	return out
}

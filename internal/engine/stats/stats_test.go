package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
)

func TestAggregatorRecordsGlobalAndPerMethod(t *testing.T) {
	a := NewAggregator()
	now := time.Now()

	a.Record(sample.Call{Method: "eth_blockNumber", Outcome: sample.Ok, StartAt: now, EndAt: now.Add(10 * time.Millisecond), ScheduledAt: now})
	a.Record(sample.Call{Method: "eth_blockNumber", Outcome: sample.ErrTimeout, StartAt: now, EndAt: now.Add(20 * time.Millisecond), ScheduledAt: now})
	a.Record(sample.Call{Method: "eth_chainId", Outcome: sample.Ok, StartAt: now, EndAt: now.Add(5 * time.Millisecond), ScheduledAt: now})

	g := a.Global()
	require.EqualValues(t, 3, g.Count)
	require.EqualValues(t, 2, g.OkCount)
	require.EqualValues(t, 1, g.ErrByKind[sample.ErrTimeout])

	perMethod := a.PerMethod()
	require.Len(t, perMethod, 2)
	require.EqualValues(t, 2, perMethod["eth_blockNumber"].Count)
	require.EqualValues(t, 1, perMethod["eth_chainId"].Count)
}

func TestQuantilesReflectRecordedLatencies(t *testing.T) {
	a := NewAggregator()
	now := time.Now()

	for i := 1; i <= 100; i++ {
		a.Record(sample.Call{
			Method:      "x",
			Outcome:     sample.Ok,
			ScheduledAt: now,
			StartAt:     now,
			EndAt:       now.Add(time.Duration(i) * time.Millisecond),
		})
	}

	g := a.Global()
	require.InDelta(t, 50*time.Millisecond, g.ServiceTime.P50, float64(2*time.Millisecond))
	require.InDelta(t, 99*time.Millisecond, g.ServiceTime.P99, float64(2*time.Millisecond))
	// At 3 significant figures, 100000us falls in a 64us-wide HDR bucket
	// (99968-100031us); Max reports that bucket's highest equivalent value.
	require.Equal(t, 100031*time.Microsecond, g.ServiceTime.Max)
}

func TestResponseTimeIncludesQueueDelay(t *testing.T) {
	a := NewAggregator()
	scheduled := time.Now()
	start := scheduled.Add(50 * time.Millisecond) // queued for 50ms before dispatch
	end := start.Add(10 * time.Millisecond)        // then took 10ms to complete

	a.Record(sample.Call{Method: "x", Outcome: sample.Ok, ScheduledAt: scheduled, StartAt: start, EndAt: end})

	g := a.Global()
	require.InDelta(t, 10*time.Millisecond, g.ServiceTime.P50, float64(2*time.Millisecond))
	require.InDelta(t, 60*time.Millisecond, g.ResponseTime.P50, float64(2*time.Millisecond))
}

func TestSeriesBucketsByEndTimeAndFinalizesAfterGrace(t *testing.T) {
	anchor := time.Now()
	s := NewSeries(time.Second, anchor)

	s.RecordCycle(sample.Cycle{
		ScheduledAt: anchor,
		StartAt:     anchor,
		EndAt:       anchor.Add(200 * time.Millisecond),
		OkCount:     1,
		Calls: []sample.Call{
			{Outcome: sample.Ok, ScheduledAt: anchor, StartAt: anchor, EndAt: anchor.Add(200 * time.Millisecond)},
		},
	})

	require.Empty(t, s.Finalized())

	s.Finalize(anchor.Add(500*time.Millisecond), 100*time.Millisecond)
	require.Empty(t, s.Finalized(), "bucket end hasn't passed yet")

	s.Finalize(anchor.Add(1200*time.Millisecond), 100*time.Millisecond)
	finalized := s.Finalized()
	require.Len(t, finalized, 1)
	require.Equal(t, 1, finalized[0].OkCycles)
	require.Equal(t, 1, finalized[0].OkCalls)
}

// TestGlobalSnapshotCountIsMonotonic asserts that two Global() snapshots
// taken at different points during a run never show the later one with a
// lower count than the earlier one — cumulative statistics only grow.
func TestGlobalSnapshotCountIsMonotonic(t *testing.T) {
	a := NewAggregator()
	now := time.Now()

	var prev Snapshot
	for i := 1; i <= 20; i++ {
		a.Record(sample.Call{
			Method:      "x",
			Outcome:     sample.Ok,
			ScheduledAt: now,
			StartAt:     now,
			EndAt:       now.Add(time.Duration(i) * time.Millisecond),
		})
		cur := a.Global()
		require.GreaterOrEqual(t, cur.Count, prev.Count)
		require.GreaterOrEqual(t, cur.OkCount, prev.OkCount)
		prev = cur
	}
	require.EqualValues(t, 20, prev.Count)
}

func TestFlushAllFinalizesEverythingRemaining(t *testing.T) {
	anchor := time.Now()
	s := NewSeries(time.Second, anchor)
	s.RecordCycle(sample.Cycle{
		ScheduledAt: anchor,
		StartAt:     anchor,
		EndAt:       anchor.Add(100 * time.Millisecond),
		OkCount:     1,
		Calls:       []sample.Call{{Outcome: sample.Ok, StartAt: anchor, EndAt: anchor.Add(100 * time.Millisecond)}},
	})

	s.FlushAll()
	require.Len(t, s.Finalized(), 1)
}

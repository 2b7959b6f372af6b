package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, ch <-chan Ticket) []Ticket {
	t.Helper()
	var out []Ticket
	for tk := range ch {
		out = append(out, tk)
	}
	return out
}

func TestEmitsExactCycleCount(t *testing.T) {
	s := New(Config{Rate: 1000, CycleCount: 25})
	ch := s.Start(t.Context())
	tickets := drain(t, ch)
	require.Len(t, tickets, 25)
	for i, tk := range tickets {
		require.Equal(t, uint64(i), tk.Index)
	}
}

func TestScheduledTimesAreEvenlySpaced(t *testing.T) {
	s := New(Config{Rate: 200, CycleCount: 40})
	ch := s.Start(t.Context())
	tickets := drain(t, ch)
	require.Len(t, tickets, 40)

	want := 5 * time.Millisecond
	for i := 1; i < len(tickets); i++ {
		got := tickets[i].ScheduledAt.Sub(tickets[i-1].ScheduledAt)
		require.InDelta(t, want, got, float64(time.Microsecond))
	}
}

func TestDurationBoundStopsEmission(t *testing.T) {
	s := New(Config{Rate: 500, Duration: 50 * time.Millisecond})
	start := time.Now()
	ch := s.Start(t.Context())
	tickets := drain(t, ch)
	elapsed := time.Since(start)

	require.NotEmpty(t, tickets)
	require.Less(t, elapsed, 200*time.Millisecond)
}

func TestAsFastAsPossibleHasNoInterTicketWait(t *testing.T) {
	s := New(Config{Rate: 0, CycleCount: 500})
	start := time.Now()
	ch := s.Start(t.Context())
	tickets := drain(t, ch)
	elapsed := time.Since(start)

	require.Len(t, tickets, 500)
	require.Less(t, elapsed, 100*time.Millisecond)
}

func TestContextCancelStopsScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	s := New(Config{Rate: 10, CycleCount: 1_000_000})
	ch := s.Start(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	tickets := drain(t, ch)
	require.Less(t, len(tickets), 1_000_000)
}

func TestStateTransitions(t *testing.T) {
	s := New(Config{Rate: 1000, CycleCount: 5})
	require.Equal(t, Idle, s.State())

	ch := s.Start(t.Context())
	require.Equal(t, Running, s.State())

	drain(t, ch)
	require.Equal(t, Draining, s.State())

	s.Finish()
	require.Equal(t, Done, s.State())
}

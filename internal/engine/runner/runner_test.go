package runner

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrpcrate/jrpcrate/internal/engine/rpcclient"
	"github.com/jrpcrate/jrpcrate/internal/engine/workload"
)

func TestPlanWithExplicitRates(t *testing.T) {
	points := Plan(PlanConfig{Rates: []float64{10, 50, 100}})
	require.Equal(t, []RatePoint{{Rate: 10}, {Rate: 50}, {Rate: 100}}, points)
}

func TestPlanExpRampStopsAtTargetInclusive(t *testing.T) {
	points := Plan(PlanConfig{Rates: []float64{5000}, ExpRamp: true})
	rates := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.Rate
	}
	require.Equal(t, []float64{10, 100, 1000, 5000}, rates)
}

func TestPlanExpRampExactPowerOfTen(t *testing.T) {
	points := Plan(PlanConfig{Rates: []float64{1000}, ExpRamp: true})
	rates := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.Rate
	}
	require.Equal(t, []float64{10, 100, 1000}, rates)
}

func TestRunAllProducesOneReportPerPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x1"}`))
	}))
	defer srv.Close()

	wl, err := workload.New([]workload.ConcreteCall{{Method: "eth_blockNumber"}}, workload.Serial)
	require.NoError(t, err)
	rpc := rpcclient.NewClient([]string{srv.URL})

	c := New(wl, rpc, 10*time.Millisecond)
	results := c.RunAll(t.Context(), PlanConfig{
		Rates:       []float64{200, 400},
		CycleCount:  20,
		CallTimeout: time.Second,
	})

	require.Len(t, results, 2)
	require.Equal(t, 200.0, results[0].Rate)
	require.Equal(t, 400.0, results[1].Rate)
	for _, r := range results {
		require.False(t, r.Aborted)
		require.EqualValues(t, 20, r.Report.Aggregate.OkCount)
	}
}

func TestRunAbortsOnSustainedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	calls := make([]workload.ConcreteCall, 60)
	for i := range calls {
		calls[i] = workload.ConcreteCall{Method: "eth_blockNumber"}
	}
	wl, err := workload.New(calls, workload.Serial)
	require.NoError(t, err)
	rpc := rpcclient.NewClient([]string{srv.URL})

	c := New(wl, rpc, time.Millisecond)
	results := c.RunAll(t.Context(), PlanConfig{
		Rates:       []float64{50},
		CycleCount:  1000,
		CallTimeout: 200 * time.Millisecond,
		MaxInflight: 4096,
	})

	require.Len(t, results, 1)
	require.True(t, results[0].Aborted)
}

func TestDeriveSeedWithoutExplicitSeedVaries(t *testing.T) {
	a := deriveSeed(PlanConfig{})
	b := deriveSeed(PlanConfig{})
	require.NotEqual(t, a, b, "no-seed case must derive a fresh seed each time")
}

func TestDeriveSeedHonorsExplicitSeed(t *testing.T) {
	got := deriveSeed(PlanConfig{HasSeed: true, Seed: 42})
	require.EqualValues(t, 42, got)
}

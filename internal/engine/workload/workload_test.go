package workload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func threeCalls() []ConcreteCall {
	return []ConcreteCall{
		{Method: "a", Params: []json.RawMessage{json.RawMessage("1")}},
		{Method: "b", Params: []json.RawMessage{json.RawMessage("2")}},
		{Method: "c", Params: []json.RawMessage{json.RawMessage("3")}},
	}
}

func TestSerialIgnoresCycleIndexAndSeed(t *testing.T) {
	w, err := New(threeCalls(), Serial)
	require.NoError(t, err)

	first := w.CycleCalls(1, 0)
	second := w.CycleCalls(99, 42)
	require.Equal(t, first, second)
	require.Len(t, first, 3)
}

func TestDeterminismForFixedSeedAndIndex(t *testing.T) {
	w, err := New(threeCalls(), Shuffle)
	require.NoError(t, err)

	a := w.CycleCalls(7, 3)
	b := w.CycleCalls(7, 3)
	require.Equal(t, a, b, "cycle_calls(seed, i) must be bit-identical across calls")
}

func TestChooseSelectsExactlyOneCall(t *testing.T) {
	w, err := New(threeCalls(), Choose)
	require.NoError(t, err)

	for i := uint64(0); i < 50; i++ {
		calls := w.CycleCalls(1, i)
		require.Len(t, calls, 1)
	}
}

func TestChooseDistributionIsRoughlyUniform(t *testing.T) {
	w, err := New(threeCalls(), Choose)
	require.NoError(t, err)

	counts := map[string]int{}
	const n = 30000
	for i := uint64(0); i < n; i++ {
		calls := w.CycleCalls(123, i)
		counts[calls[0].Method]++
	}

	for _, method := range []string{"a", "b", "c"} {
		c := counts[method]
		require.InDelta(t, 10000, c, 400, "method %s selected %d times", method, c)
	}
}

func TestNewRejectsEmptyCallList(t *testing.T) {
	_, err := New(nil, Serial)
	require.Error(t, err)
}

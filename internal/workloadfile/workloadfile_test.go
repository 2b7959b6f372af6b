package workloadfile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrpcrate/jrpcrate/internal/engine/workload"
)

func TestParseExpandsRangeAndAppliesPolicy(t *testing.T) {
	data := []byte(`{
		"calls": [
			{"method": "eth_getBlockByNumber", "params": ["0x1..0x3", true]}
		],
		"policy": "shuffle"
	}`)

	wl, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, workload.Shuffle, wl.Policy())
	require.Equal(t, 3, wl.Len())
}

func TestParseDefaultsToSerialPolicy(t *testing.T) {
	data := []byte(`{"calls": [{"method": "eth_blockNumber", "params": []}]}`)
	wl, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, workload.Serial, wl.Policy())
}

func TestParseRejectsUnknownPolicy(t *testing.T) {
	data := []byte(`{"calls": [{"method": "eth_blockNumber"}], "policy": "random"}`)
	_, err := Parse(data)
	require.Error(t, err)
}

func TestParseRejectsEmptyMethod(t *testing.T) {
	data := []byte(`{"calls": [{"method": "", "params": []}]}`)
	_, err := Parse(data)
	require.Error(t, err)
}

func TestParseRejectsMultipleRangesInOneCall(t *testing.T) {
	data := []byte(`{"calls": [{"method": "eth_x", "params": ["1..3", "1..2"]}]}`)
	_, err := Parse(data)
	require.Error(t, err)
}

func TestParseBareTokenIsQuoted(t *testing.T) {
	data := []byte(`{"calls": [{"method": "eth_getBlockByNumber", "params": ["latest"]}]}`)
	wl, err := Parse(data)
	require.NoError(t, err)
	calls := wl.Calls()
	require.Len(t, calls, 1)
	require.JSONEq(t, `"latest"`, string(calls[0].Params[0]))
}

package workload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTemplateStringRangeExpansion(t *testing.T) {
	tmpl, err := ParseTemplateString("eth_getBlockByNumber", `0x1b4..0x1b6 true`)
	require.NoError(t, err)

	calls, err := Expand(tmpl)
	require.NoError(t, err)
	require.Len(t, calls, 3)

	want := []string{`"0x1b4"`, `"0x1b5"`, `"0x1b6"`}
	for i, c := range calls {
		require.Equal(t, "eth_getBlockByNumber", c.Method)
		require.Len(t, c.Params, 2)
		require.JSONEq(t, want[i], string(c.Params[0]))
		require.JSONEq(t, "true", string(c.Params[1]))
	}
}

func TestParseTemplateStringBareString(t *testing.T) {
	tmpl, err := ParseTemplateString("eth_getBlockByNumber", `latest false`)
	require.NoError(t, err)
	calls, err := Expand(tmpl)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.JSONEq(t, `"latest"`, string(calls[0].Params[0]))
	require.JSONEq(t, "false", string(calls[0].Params[1]))
}

func TestParseTemplateStringRejectsMultipleRanges(t *testing.T) {
	_, err := ParseTemplateString("m", `1..2 3..4`)
	require.Error(t, err)
	var target *MultipleRangesError
	require.ErrorAs(t, err, &target)
}

func TestParseTemplateStringRejectsBadRange(t *testing.T) {
	_, err := ParseTemplateString("m", `5..2`)
	require.Error(t, err)
	var target *InvalidRangeError
	require.ErrorAs(t, err, &target)
}

func TestParseTemplateStringRejectsEmptyMethod(t *testing.T) {
	_, err := ParseTemplateString("   ", "1 2")
	require.Error(t, err)
	var target *EmptyMethodError
	require.ErrorAs(t, err, &target)
}

func TestExpandPreservesOrderAcrossTemplates(t *testing.T) {
	a, err := ParseTemplateString("eth_call", "0x1..0x2 latest")
	require.NoError(t, err)
	b, err := ParseTemplateString("eth_blockNumber", "")
	require.NoError(t, err)

	aCalls, err := Expand(a)
	require.NoError(t, err)
	bCalls, err := Expand(b)
	require.NoError(t, err)

	require.Len(t, aCalls, 2)
	require.Len(t, bCalls, 1)
	require.Equal(t, "eth_call", aCalls[0].Method)
	require.Equal(t, "eth_blockNumber", bCalls[0].Method)
}

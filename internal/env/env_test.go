package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSetsVariablesFromDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	content := "JRPCRATE_RPC_URL=https://example.test/rpc\n# a comment\n\nJRPCRATE_TOKEN=\"quoted\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	os.Unsetenv("JRPCRATE_RPC_URL")
	os.Unsetenv("JRPCRATE_TOKEN")
	Load()

	require.Equal(t, "https://example.test/rpc", os.Getenv("JRPCRATE_RPC_URL"))
	require.Equal(t, "quoted", os.Getenv("JRPCRATE_TOKEN"))
}

func TestLoadIsNoopWithoutDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	require.NotPanics(t, Load)
}

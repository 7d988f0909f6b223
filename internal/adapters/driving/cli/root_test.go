package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/config"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "kbrag", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"version", "fetch", "clean", "index", "ask", "search", "health", "serve", "mcp", "config"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestLoadRuntime_BuildsOnce(t *testing.T) {
	rt := newMockRuntime()
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	calls := 0
	newRuntime = func(string) (Runtime, error) {
		calls++
		return rt, nil
	}

	first, err := loadRuntime()
	require.NoError(t, err)
	second, err := loadRuntime()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLoadRuntime_PassesConfigPath(t *testing.T) {
	rt := newMockRuntime()
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	var gotPath string
	newRuntime = func(path string) (Runtime, error) {
		gotPath = path
		return rt, nil
	}

	_, err := execute("--config", "/tmp/kbrag.toml", "health")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kbrag.toml", gotPath)
}

func TestLoadRuntime_Error(t *testing.T) {
	_, cleanup := setupTestRuntime(newMockRuntime())
	defer cleanup()

	newRuntime = func(string) (Runtime, error) {
		return nil, errors.New("bad toml")
	}

	_, err := execute("health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading settings: bad toml")
}

func TestLoadRuntime_DebugLogLevelEnablesVerbose(t *testing.T) {
	rt := newMockRuntime()
	rt.settings = &config.Settings{Log: config.LogConfig{Level: "DEBUG"}}
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()
	defer logger.SetVerbose(false)

	_, err := loadRuntime()
	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestCloseRuntime(t *testing.T) {
	rt := newMockRuntime()
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	_, err := loadRuntime()
	require.NoError(t, err)

	closeRuntime()
	assert.True(t, rt.closed)
	assert.Nil(t, current)

	closeRuntime() // no-op
}

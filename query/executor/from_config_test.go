package executor_test

import (
	"testing"

	"github.com/girardinsamuel/quarry/config"
	"github.com/girardinsamuel/quarry/query/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Default: "main",
		Connections: map[string]config.Connection{
			"main":    {Dialect: "sqlite", DSN: ":memory:"},
			"archive": {Dialect: "sqlite", DSN: ":memory:"},
		},
	}

	mgr, err := executor.FromConfig(cfg)
	require.NoError(t, err)
	defer mgr.Close()

	dialect, err := mgr.Dialect("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", dialect)

	dialect, err = mgr.Dialect("archive")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", dialect)
}

func TestFromConfig_InvalidConfig(t *testing.T) {
	_, err := executor.FromConfig(&config.Config{Default: "main"})
	assert.Error(t, err)
}

func TestFromConfig_UnknownDialect(t *testing.T) {
	cfg := &config.Config{
		Default: "main",
		Connections: map[string]config.Connection{
			"main": {Dialect: "oracle", DSN: "x"},
		},
	}
	_, err := executor.FromConfig(cfg)
	assert.Error(t, err)
}

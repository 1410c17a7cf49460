package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/girardinsamuel/quarry/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quarry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, `
default: main
debug: true
connections:
  main:
    dialect: postgres
    dsn: postgres://localhost/app
  analytics:
    dialect: sqlite
    dsn: file:analytics.db
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Default)
	assert.True(t, cfg.Debug)
	require.Len(t, cfg.Connections, 2)
	assert.Equal(t, "postgres", cfg.Connections["main"].Dialect)
	assert.Equal(t, "file:analytics.db", cfg.Connections["analytics"].DSN)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "default: [unclosed")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	path := writeConfig(t, "default: default\n")
	t.Setenv("DATABASE_URL", "postgres://localhost/fallback")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	conn, ok := cfg.Connections["default"]
	require.True(t, ok)
	assert.Equal(t, "postgres", conn.Dialect)
	assert.Equal(t, "postgres://localhost/fallback", conn.DSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{
			name:    "no connections",
			cfg:     config.Config{Default: "main"},
			wantErr: true,
		},
		{
			name: "default not configured",
			cfg: config.Config{
				Default:     "main",
				Connections: map[string]config.Connection{"other": {Dialect: "postgres"}},
			},
			wantErr: true,
		},
		{
			name: "missing dialect",
			cfg: config.Config{
				Default:     "main",
				Connections: map[string]config.Connection{"main": {DSN: "x"}},
			},
			wantErr: true,
		},
		{
			name: "valid",
			cfg: config.Config{
				Default:     "main",
				Connections: map[string]config.Connection{"main": {Dialect: "postgres", DSN: "x"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "tracker:\n  strategies: []\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Tracker.IntervalSeconds)
	assert.Equal(t, "ALL", cfg.Tracker.Window)
	assert.Equal(t, "total_pnl", cfg.Tracker.SortBy)
	assert.True(t, cfg.Tracker.SortDesc)
	assert.Equal(t, "https://data-api.polymarket.com", cfg.API.DataBase)
	assert.Equal(t, "polycopy.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Strategies(t *testing.T) {
	path := writeConfig(t, `
tracker:
  interval_seconds: 15
  window: 7D
  strategies:
    - id: s1
      name: Alpha
      kind: forward_test
      wallet: "0xabc"
      starting_balance: 250
      start_date: 2026-01-05
      active: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Tracker.IntervalSeconds)
	assert.Equal(t, "7D", cfg.Tracker.Window)
	require.Len(t, cfg.Tracker.Strategies, 1)
	s := cfg.Tracker.Strategies[0]
	assert.Equal(t, "Alpha", s.Name)
	assert.Equal(t, "0xabc", s.Wallet)
	assert.InDelta(t, 250.0, s.StartingBalance, 1e-9)
	assert.Equal(t, "2026-01-05", s.StartDate)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LEDGER_API_KEY", "sekret")
	path := writeConfig(t, "log:\n  level: info\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sekret", cfg.API.LedgerKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

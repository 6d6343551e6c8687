package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "data/sandbox.db", cfg.DBPath)
	assert.Equal(t, 60, cfg.JWTExpiresMinutes)
	assert.Equal(t, "https://api.binance.com", cfg.BinanceAPIURL)
	assert.Equal(t, 3, cfg.QuoteCacheSecs)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
jwt_secret: from-file
log:
  level: debug
`), 0o644))

	t.Setenv("SANDBOX_JWT_SECRET", "from-env")
	t.Setenv("SANDBOX_PRICE_TIMEOUT_SECONDS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 3, cfg.PriceTimeoutSecs)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

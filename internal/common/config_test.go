package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gapper.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig_IsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	w := config.Scoring.Weights
	assert.InDelta(t, 1.0, w.AI+w.RVOL+w.Gap+w.Change, 1e-9)
	assert.Equal(t, 75.0, config.Scoring.TradeThreshold)
	assert.Equal(t, 55.0, config.Scoring.WatchThreshold)
	assert.Equal(t, 8, config.News.MaxPerTicker)
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	base := writeConfig(t, `
[news]
max_per_ticker = 5

[pipeline]
concurrency = 4
`)
	override := writeConfig(t, `
[pipeline]
concurrency = 2
`)

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 5, config.News.MaxPerTicker)
	assert.Equal(t, 2, config.Pipeline.Concurrency)
	// Untouched sections keep defaults
	assert.Equal(t, "memory", config.Cache.Backend)
}

func TestLoadFromFiles_RejectsWeightsNotSummingToOne(t *testing.T) {
	path := writeConfig(t, `
[scoring.weights]
ai = 0.5
rvol = 0.5
gap = 0.5
change = 0.1
`)

	_, err := LoadFromFiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")
}

func TestLoadFromFiles_RejectsOutOfRangeWeight(t *testing.T) {
	path := writeConfig(t, `
[scoring.weights]
ai = 1.2
rvol = -0.2
gap = 0.0
change = 0.0
`)

	_, err := LoadFromFiles(path)
	require.Error(t, err)
}

func TestLoadFromFiles_RejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "memcached"
`)

	_, err := LoadFromFiles(path)
	require.Error(t, err)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GAPPER_SERVER_PORT", "9090")
	t.Setenv("GAPPER_CACHE_BACKEND", "redis")
	t.Setenv("GAPPER_UNIVERSE", "aapl, msft,,tsla")
	t.Setenv("GAPPER_ARCHIVE_DSN", "postgres://localhost/gapper")

	config := NewDefaultConfig()
	applyEnvOverrides(config)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "redis", config.Cache.Backend)
	assert.Equal(t, []string{"aapl", "msft", "tsla"}, config.Pipeline.Universe)
	assert.True(t, config.Archive.Enabled)
}

func TestModelProviderNeedsCoefficients(t *testing.T) {
	config := NewDefaultConfig()
	config.Confidence.Provider = "model"
	require.Error(t, config.Validate())

	config.Confidence.Model = ModelConfig{
		Coefficients: []float64{1, 1, 1},
		Means:        []float64{0, 0, 0},
		Scales:       []float64{1, 1, 1},
	}
	require.NoError(t, config.Validate())
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDurationOr("5s", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("soon", time.Minute))
}

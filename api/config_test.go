package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitaplan/capacity-engine/generic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kita.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
port: 9090
autosave: 5s
chart:
  day_start: "06:30"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Autosave)
	assert.Equal(t, "kita.db", cfg.Database)
	assert.Equal(t, DefaultConfig().CORSOrigins, cfg.CORSOrigins)

	chart, err := cfg.ChartConfig()
	require.NoError(t, err)
	assert.Equal(t, generic.MustParseClock("06:30"), chart.DayStart)
	assert.Equal(t, generic.MustParseClock("17:00"), chart.DayEnd)
	assert.Equal(t, 30, chart.SegmentMinutes)
}

func TestLoadConfig_InvalidChart(t *testing.T) {
	path := writeConfig(t, `
chart:
  day_start: "18:00"
  day_end: "08:00"
`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = LoadConfig(writeConfig(t, "port: [1"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestChartConfig_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chart.DayStart = "7 Uhr"
	_, err := cfg.ChartConfig()
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	cfg = DefaultConfig()
	cfg.Chart.SegmentMinutes = 0
	_, err = cfg.ChartConfig()
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

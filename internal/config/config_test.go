package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "monthly", cfg.Frequency)
	assert.Equal(t, 365, cfg.LookbackDays)
	assert.Equal(t, 30, cfg.MinRecords)
	assert.Equal(t, 36, cfg.MinCycles)
	assert.Equal(t, 0.65, cfg.TargetF1)
	assert.Equal(t, 0.05, cfg.Significance)
	assert.Equal(t, 252, cfg.PeriodsPerYear)
	assert.Equal(t, "breakout", cfg.PositiveLabel)
	assert.False(t, cfg.DatabaseEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RETRAIN_FREQUENCY", "quarterly")
	t.Setenv("LOOKBACK_DAYS", "730")
	t.Setenv("TARGET_F1", "0.7")
	t.Setenv("DATABASE_ENABLED", "true")
	t.Setenv("MIN_CYCLES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "quarterly", cfg.Frequency)
	assert.Equal(t, 730, cfg.LookbackDays)
	assert.Equal(t, 0.7, cfg.TargetF1)
	assert.True(t, cfg.DatabaseEnabled)
	assert.Equal(t, 36, cfg.MinCycles, "unparseable values fall back to the default")
}

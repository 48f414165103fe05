package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfileDefaults(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)

	assert.Equal(t, 0.05, p.Significance)
	assert.Equal(t, map[string]float64{
		"f1":            0.4,
		"sharpe":        0.3,
		"consistency":   0.2,
		"training_time": 0.1,
	}, p.WeightMap())
}

func TestLoadProfileFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	yaml := "significance: 0.01\nweights:\n  f1: 0.6\n  sharpe: 0.2\n  consistency: 0.1\n  training_time: 0.1\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.01, p.Significance)
	assert.Equal(t, 0.6, p.Weights.F1)
}

func TestLoadProfileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "significance above 1", yaml: "significance: 2\n"},
		{name: "negative weight", yaml: "weights:\n  f1: -0.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profile.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := LoadProfile(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

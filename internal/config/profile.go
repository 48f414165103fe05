package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ComparisonProfile is the YAML-backed tuning profile for multi-strategy
// comparison runs: composite weights and the significance level.
type ComparisonProfile struct {
	Significance float64 `yaml:"significance" default:"0.05" validate:"gt=0,lt=1"`
	Weights      struct {
		F1           float64 `yaml:"f1" default:"0.4" validate:"gte=0"`
		Sharpe       float64 `yaml:"sharpe" default:"0.3" validate:"gte=0"`
		Consistency  float64 `yaml:"consistency" default:"0.2" validate:"gte=0"`
		TrainingTime float64 `yaml:"training_time" default:"0.1" validate:"gte=0"`
	} `yaml:"weights"`
}

// LoadProfile reads a comparison profile from path. A missing path returns
// the defaults so comparisons work without any profile file.
func LoadProfile(path string) (*ComparisonProfile, error) {
	var p ComparisonProfile
	if err := defaults.Set(&p); err != nil {
		return nil, fmt.Errorf("applying profile defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		if err := yaml.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("parse profile: %w", err)
		}
	}

	if err := validator.New().Struct(&p); err != nil {
		return nil, fmt.Errorf("validate profile: %w", err)
	}
	return &p, nil
}

// WeightMap returns the weights in the map form the comparator consumes.
func (p *ComparisonProfile) WeightMap() map[string]float64 {
	return map[string]float64{
		"f1":            p.Weights.F1,
		"sharpe":        p.Weights.Sharpe,
		"consistency":   p.Weights.Consistency,
		"training_time": p.Weights.TrainingTime,
	}
}

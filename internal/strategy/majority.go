package strategy

import (
	"context"
	"fmt"

	"github.com/Alias1177/Validator/models"
)

// MajorityStrategy predicts the most frequent training label for every test
// record. It exists as the floor any real strategy must beat in comparisons.
type MajorityStrategy struct{}

// NewMajorityStrategy creates the majority-label baseline.
func NewMajorityStrategy() *MajorityStrategy {
	return &MajorityStrategy{}
}

// Fit counts label frequencies in the training window.
func (s *MajorityStrategy) Fit(ctx context.Context, train models.Dataset) (models.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if train.Len() == 0 {
		return nil, fmt.Errorf("empty training window")
	}

	counts := map[string]int{}
	for _, r := range train.Records {
		counts[r.Label]++
	}

	var label string
	var best int
	for l, n := range counts {
		if n > best || (n == best && l < label) {
			label, best = l, n
		}
	}

	return &majorityModel{
		label: label,
		score: float64(best) / float64(train.Len()),
	}, nil
}

type majorityModel struct {
	label string
	score float64
}

// Predict emits the majority label with its training frequency as the score.
func (m *majorityModel) Predict(ctx context.Context, test models.Dataset) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preds := make([]models.Prediction, test.Len())
	for i, r := range test.Records {
		preds[i] = models.Prediction{Timestamp: r.Timestamp, Label: m.label, Score: m.score}
	}
	return preds, nil
}

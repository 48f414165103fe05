package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Validator/models"
)

// ThresholdStrategy learns per-label feature centroids from the training
// window and classifies by nearest centroid. It is the reference candidate
// used when comparing more elaborate strategies.
type ThresholdStrategy struct {
	logger zerolog.Logger
}

// NewThresholdStrategy creates the nearest-centroid strategy.
func NewThresholdStrategy() *ThresholdStrategy {
	return &ThresholdStrategy{
		logger: log.With().Str("component", "threshold_strategy").Logger(),
	}
}

// Fit computes per-label centroids over the training window's features.
func (s *ThresholdStrategy) Fit(ctx context.Context, train models.Dataset) (models.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if train.Len() == 0 {
		return nil, fmt.Errorf("empty training window")
	}

	dim := len(train.Records[0].Features)
	if dim == 0 {
		return nil, fmt.Errorf("records carry no features")
	}
	for i, r := range train.Records {
		if len(r.Features) != dim {
			return nil, fmt.Errorf("record %d has %d features, expected %d", i, len(r.Features), dim)
		}
	}

	sums := map[string][]float64{}
	counts := map[string]int{}
	for _, r := range train.Records {
		if sums[r.Label] == nil {
			sums[r.Label] = make([]float64, dim)
		}
		counts[r.Label]++
		for j, v := range r.Features {
			sums[r.Label][j] += v
		}
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("training window has %d distinct labels, need at least 2", len(counts))
	}

	centroids := map[string][]float64{}
	for label, sum := range sums {
		centroid := make([]float64, dim)
		for j := range sum {
			centroid[j] = sum[j] / float64(counts[label])
		}
		centroids[label] = centroid
	}

	s.logger.Debug().
		Int("records", train.Len()).
		Int("labels", len(centroids)).
		Int("features", dim).
		Msg("Fitted centroids")

	return &centroidModel{centroids: centroids, dim: dim}, nil
}

type centroidModel struct {
	centroids map[string][]float64
	dim       int
}

// Predict classifies each test record by its nearest centroid. The score is
// the margin between the two closest centroids squashed into (0, 1), so a
// record sitting exactly between two labels scores 0.5.
func (m *centroidModel) Predict(ctx context.Context, test models.Dataset) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	preds := make([]models.Prediction, 0, test.Len())
	for i, r := range test.Records {
		if len(r.Features) != m.dim {
			return nil, fmt.Errorf("record %d has %d features, expected %d", i, len(r.Features), m.dim)
		}

		best, second := math.Inf(1), math.Inf(1)
		bestLabel := ""
		for label, centroid := range m.centroids {
			d := distance(r.Features, centroid)
			if d < best {
				second = best
				best, bestLabel = d, label
			} else if d < second {
				second = d
			}
		}

		margin := 0.0
		if !math.IsInf(second, 1) {
			margin = second - best
		}
		preds = append(preds, models.Prediction{
			Timestamp: r.Timestamp,
			Label:     bestLabel,
			Score:     1 / (1 + math.Exp(-margin)),
		})
	}
	return preds, nil
}

func distance(a, b []float64) float64 {
	var sum float64
	for j := range a {
		d := a[j] - b[j]
		sum += d * d
	}
	return math.Sqrt(sum)
}

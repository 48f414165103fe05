package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Validator/models"
)

// clusteredDataset builds two well-separated feature clusters: breakout
// records around (10, 10), none records around (0, 0).
func clusteredDataset(n int) models.Dataset {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := models.Dataset{Instrument: "EUR/USD"}
	for i := 0; i < n; i++ {
		label := "none"
		center := 0.0
		if i%2 == 0 {
			label = "breakout"
			center = 10
		}
		jitter := float64(i%5) * 0.1
		ds.Records = append(ds.Records, models.Record{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Features:  []float64{center + jitter, center - jitter},
			Label:     label,
		})
	}
	return ds
}

func TestThresholdStrategySeparatesClusters(t *testing.T) {
	ctx := context.Background()
	train := clusteredDataset(60)
	test := clusteredDataset(20)

	model, err := NewThresholdStrategy().Fit(ctx, train)
	require.NoError(t, err)

	preds, err := model.Predict(ctx, test)
	require.NoError(t, err)
	require.Len(t, preds, 20)

	for i, p := range preds {
		assert.Equal(t, test.Records[i].Label, p.Label, "record %d", i)
		assert.Greater(t, p.Score, 0.5, "separated clusters should score confidently")
		assert.LessOrEqual(t, p.Score, 1.0)
	}
}

func TestThresholdStrategyRejectsBadTraining(t *testing.T) {
	ctx := context.Background()
	s := NewThresholdStrategy()

	_, err := s.Fit(ctx, models.Dataset{})
	assert.Error(t, err, "empty training window")

	single := clusteredDataset(10)
	for i := range single.Records {
		single.Records[i].Label = "none"
	}
	_, err = s.Fit(ctx, single)
	assert.Error(t, err, "single-label window cannot separate anything")

	ragged := clusteredDataset(10)
	ragged.Records[3].Features = []float64{1}
	_, err = s.Fit(ctx, ragged)
	assert.Error(t, err, "inconsistent feature dimensions")
}

func TestMajorityStrategy(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	train := models.Dataset{}
	for i := 0; i < 10; i++ {
		label := "none"
		if i >= 7 {
			label = "breakout"
		}
		train.Records = append(train.Records, models.Record{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Label:     label,
		})
	}

	model, err := NewMajorityStrategy().Fit(ctx, train)
	require.NoError(t, err)

	test := clusteredDataset(6)
	preds, err := model.Predict(ctx, test)
	require.NoError(t, err)
	require.Len(t, preds, 6)

	for _, p := range preds {
		assert.Equal(t, "none", p.Label)
		assert.InDelta(t, 0.7, p.Score, 1e-9, "score is the training frequency")
	}
}

func TestMajorityStrategyEmptyTraining(t *testing.T) {
	_, err := NewMajorityStrategy().Fit(context.Background(), models.Dataset{})
	assert.Error(t, err)
}

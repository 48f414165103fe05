package stats

import (
	"math"
	"testing"

	"github.com/Alias1177/Validator/models"
)

func recordsWithLabels(labels []string) []models.Record {
	records := make([]models.Record, len(labels))
	for i, l := range labels {
		records[i] = models.Record{Label: l}
	}
	return records
}

func predictionsWith(labels []string, scores []float64) []models.Prediction {
	preds := make([]models.Prediction, len(labels))
	for i, l := range labels {
		preds[i] = models.Prediction{Label: l}
		if scores != nil {
			preds[i].Score = scores[i]
		}
	}
	return preds
}

func TestEvaluateConfusion(t *testing.T) {
	records := recordsWithLabels([]string{"breakout", "breakout", "breakout", "none", "none"})
	preds := predictionsWith([]string{"breakout", "breakout", "none", "breakout", "none"}, nil)

	m := Evaluate(records, preds, "breakout")

	if m.Confusion.TruePositives != 2 || m.Confusion.FalsePositives != 1 ||
		m.Confusion.FalseNegatives != 1 || m.Confusion.TrueNegatives != 1 {
		t.Errorf("confusion = %+v, want tp=2 fp=1 fn=1 tn=1", m.Confusion)
	}
	want := 2.0 / 3.0
	if math.Abs(m.Precision-want) > 1e-9 || math.Abs(m.Recall-want) > 1e-9 || math.Abs(m.F1-want) > 1e-9 {
		t.Errorf("precision=%v recall=%v f1=%v, want all %v", m.Precision, m.Recall, m.F1, want)
	}
}

func TestEvaluatePerfect(t *testing.T) {
	labels := []string{"breakout", "none", "breakout", "none"}
	m := Evaluate(recordsWithLabels(labels), predictionsWith(labels, nil), "breakout")
	if m.F1 != 1 || m.Precision != 1 || m.Recall != 1 {
		t.Errorf("perfect predictions scored f1=%v precision=%v recall=%v", m.F1, m.Precision, m.Recall)
	}
}

func TestEvaluateNoPositivePredictions(t *testing.T) {
	records := recordsWithLabels([]string{"breakout", "none", "breakout"})
	preds := predictionsWith([]string{"none", "none", "none"}, nil)
	m := Evaluate(records, preds, "breakout")
	if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
		t.Errorf("got precision=%v recall=%v f1=%v, want zeros", m.Precision, m.Recall, m.F1)
	}
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		scores []float64
		want   *float64
	}{
		{
			name:   "perfect separation",
			labels: []string{"breakout", "breakout", "none", "none"},
			scores: []float64{0.9, 0.8, 0.2, 0.1},
			want:   models.Float64(1),
		},
		{
			name:   "inverted separation",
			labels: []string{"breakout", "breakout", "none", "none"},
			scores: []float64{0.1, 0.2, 0.8, 0.9},
			want:   models.Float64(0),
		},
		{
			name:   "uninformative constant scores",
			labels: []string{"breakout", "none"},
			scores: []float64{0.5, 0.5},
			want:   nil,
		},
		{
			name:   "single class",
			labels: []string{"breakout", "breakout"},
			scores: []float64{0.9, 0.1},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := make([]models.Prediction, len(tt.labels))
			for i := range preds {
				preds[i] = models.Prediction{Label: tt.labels[i], Score: tt.scores[i]}
			}
			m := Evaluate(recordsWithLabels(tt.labels), preds, "breakout")

			if tt.want == nil {
				if m.ROCAUC != nil {
					t.Errorf("ROCAUC = %v, want nil", *m.ROCAUC)
				}
				return
			}
			if m.ROCAUC == nil || math.Abs(*m.ROCAUC-*tt.want) > 1e-9 {
				t.Errorf("ROCAUC = %v, want %v", m.ROCAUC, *tt.want)
			}
		})
	}
}

func TestCorrectness(t *testing.T) {
	records := recordsWithLabels([]string{"breakout", "none", "breakout"})
	preds := predictionsWith([]string{"breakout", "breakout", "breakout"}, nil)

	got := Correctness(records, preds)
	want := []bool{true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Correctness()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

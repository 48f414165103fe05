package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alias1177/Validator/models"
)

func TestYearlyPeriods(t *testing.T) {
	ds := threeYearDataset()
	periods := YearlyPeriods(ds)

	if len(periods) != 3 {
		t.Fatalf("got %d periods, want 3", len(periods))
	}
	want := []string{"2022", "2023", "2024"}
	for i, p := range periods {
		if p.Label != want[i] {
			t.Errorf("period %d label = %q, want %q", i, p.Label, want[i])
		}
		if !p.End.Equal(p.Start.AddDate(1, 0, 0)) {
			t.Errorf("period %q spans %v to %v, want one year", p.Label, p.Start, p.End)
		}
	}
}

func TestQuarterlyPeriods(t *testing.T) {
	ds := dailyDataset(time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC), 200)
	periods := QuarterlyPeriods(ds)

	if len(periods) == 0 {
		t.Fatal("got no periods")
	}
	if periods[0].Label != "2023-Q1" {
		t.Errorf("first label = %q, want 2023-Q1", periods[0].Label)
	}
	if !periods[0].Start.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first quarter starts %v, want 2023-01-01", periods[0].Start)
	}
}

func TestHistoricalRun(t *testing.T) {
	store := &memStore{}
	a := NewHistoricalAnalyzer(echoTrainer{}, NewSplitter(20, 365*24*time.Hour),
		store, DefaultOptions(), 4)

	ds := threeYearDataset()
	rec, err := a.Run(context.Background(), ds, YearlyPeriods(ds))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 2022 has no preceding training data, so its result carries an inline
	// error and the run is partial, not failed.
	if rec.Status != models.StatusPartial {
		t.Errorf("Status = %v, want partial", rec.Status)
	}
	if len(rec.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(rec.Results))
	}
	if rec.Results[0].Error == "" {
		t.Errorf("2022 result should record the missing training data inline")
	}
	for _, res := range rec.Results[1:] {
		if res.Error != "" {
			t.Errorf("period %s failed: %s", res.Period.Label, res.Error)
		}
		if res.Classification.F1 != 1 {
			t.Errorf("period %s F1 = %v, want 1", res.Period.Label, res.Classification.F1)
		}
	}
	if rec.Historical.MeanF1 != 1 {
		t.Errorf("MeanF1 = %v, want 1 over successful periods", rec.Historical.MeanF1)
	}
	if len(store.saved) != 1 {
		t.Errorf("store captured %d records, want 1", len(store.saved))
	}

	// Results come back in chronological order regardless of worker timing.
	for i := 1; i < len(rec.Results); i++ {
		if rec.Results[i].Period.Start.Before(rec.Results[i-1].Period.Start) {
			t.Errorf("results out of order at %d", i)
		}
	}
}

func TestHistoricalDriftFlagged(t *testing.T) {
	a := NewHistoricalAnalyzer(constTrainer{label: "none"}, NewSplitter(20, 365*24*time.Hour),
		nil, DefaultOptions(), 1)

	ds := threeYearDataset()
	rec, err := a.Run(context.Background(), ds, YearlyPeriods(ds)[1:])
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// A constant predictor against a balanced label mix is a distribution
	// shift, every evaluated period should be flagged.
	if len(rec.Historical.DriftPeriods) != 2 {
		t.Errorf("DriftPeriods = %v, want both periods flagged", rec.Historical.DriftPeriods)
	}
	for _, res := range rec.Results {
		if res.DriftPValue == nil || *res.DriftPValue >= 0.05 {
			t.Errorf("period %s drift p-value = %v, want below 0.05", res.Period.Label, res.DriftPValue)
		}
		if res.Risk != nil {
			t.Errorf("period %s has risk metrics with no positive signals", res.Period.Label)
		}
	}
}

func TestHistoricalCancellation(t *testing.T) {
	store := &memStore{}
	a := NewHistoricalAnalyzer(echoTrainer{}, NewSplitter(20, 365*24*time.Hour),
		store, DefaultOptions(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds := threeYearDataset()
	rec, err := a.Run(ctx, ds, YearlyPeriods(ds))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if rec.Status != models.StatusAborted {
		t.Errorf("Status = %v, want aborted", rec.Status)
	}
	// Partial results still reach the store on abort.
	if len(store.saved) != 1 {
		t.Fatalf("store captured %d records, want 1", len(store.saved))
	}
	if store.saved[0].Status != models.StatusAborted {
		t.Errorf("saved status = %v, want aborted", store.saved[0].Status)
	}
}

func TestHistoricalDegradationWarning(t *testing.T) {
	a := NewHistoricalAnalyzer(echoTrainer{}, NewSplitter(20, 365*24*time.Hour),
		nil, DefaultOptions(), 1)

	mk := func(label string, month time.Month, f1 float64) models.EvaluationResult {
		start := time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC)
		return models.EvaluationResult{
			Period:         models.Period{Label: label, Start: start, End: start.AddDate(0, 1, 0)},
			Classification: models.ClassificationMetrics{F1: f1},
		}
	}

	tests := []struct {
		name    string
		results []models.EvaluationResult
		warn    bool
		span    int
	}{
		{
			name: "monotonic decline over four periods",
			results: []models.EvaluationResult{
				mk("a", 1, 0.9), mk("b", 2, 0.8), mk("c", 3, 0.7), mk("d", 4, 0.6),
			},
			warn: true,
			span: 4,
		},
		{
			name: "decline interrupted by recovery",
			results: []models.EvaluationResult{
				mk("a", 1, 0.9), mk("b", 2, 0.8), mk("c", 3, 0.85), mk("d", 4, 0.8),
			},
			warn: false,
		},
		{
			name: "exactly three declining",
			results: []models.EvaluationResult{
				mk("a", 1, 0.9), mk("b", 2, 0.8), mk("c", 3, 0.7), mk("d", 4, 0.75),
			},
			warn: true,
			span: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := a.summarize(tt.results)
			if summary.DegradationWarning != tt.warn {
				t.Fatalf("DegradationWarning = %v, want %v", summary.DegradationWarning, tt.warn)
			}
			if tt.warn && len(summary.DegradationSpan) != tt.span {
				t.Errorf("DegradationSpan = %v, want %d labels", summary.DegradationSpan, tt.span)
			}
		})
	}
}

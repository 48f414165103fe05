package validation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Alias1177/Validator/models"
)

// echoTrainer trains a model that repeats each record's true label, the
// upper bound any real strategy can reach.
type echoTrainer struct{}

func (echoTrainer) Fit(ctx context.Context, train models.Dataset) (models.Model, error) {
	if train.Len() == 0 {
		return nil, fmt.Errorf("empty training window")
	}
	return echoModel{}, nil
}

type echoModel struct{}

func (echoModel) Predict(ctx context.Context, test models.Dataset) ([]models.Prediction, error) {
	preds := make([]models.Prediction, test.Len())
	for i, r := range test.Records {
		score := 0.1
		if r.Label == "breakout" {
			score = 0.9
		}
		preds[i] = models.Prediction{Timestamp: r.Timestamp, Label: r.Label, Score: score}
	}
	return preds, nil
}

// constTrainer trains a model that predicts one fixed label.
type constTrainer struct{ label string }

func (c constTrainer) Fit(ctx context.Context, train models.Dataset) (models.Model, error) {
	return constModel{label: c.label}, nil
}

type constModel struct{ label string }

func (m constModel) Predict(ctx context.Context, test models.Dataset) ([]models.Prediction, error) {
	preds := make([]models.Prediction, test.Len())
	for i, r := range test.Records {
		preds[i] = models.Prediction{Timestamp: r.Timestamp, Label: m.label, Score: 0.5}
	}
	return preds, nil
}

// failTrainer always fails to converge.
type failTrainer struct{}

func (failTrainer) Fit(ctx context.Context, train models.Dataset) (models.Model, error) {
	return nil, errors.New("did not converge")
}

// memStore captures persisted run records. Like the file store it refuses
// cancelled contexts.
type memStore struct {
	saved []models.RunRecord
}

func (s *memStore) Save(ctx context.Context, rec models.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.saved = append(s.saved, rec)
	return nil
}

func threeYearDataset() models.Dataset {
	return dailyDataset(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 1096)
}

func TestWalkForwardHappyPath(t *testing.T) {
	store := &memStore{}
	v := NewWalkForwardValidator(echoTrainer{}, NewSplitter(20, 365*24*time.Hour),
		store, DefaultOptions(), Monthly, 12, 0.65, 0)

	rec, err := v.Run(context.Background(), threeYearDataset())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rec.Status != models.StatusComplete {
		t.Errorf("Status = %v, want complete", rec.Status)
	}
	if rec.WalkForward.CyclesTotal != 24 {
		t.Errorf("CyclesTotal = %d, want 24", rec.WalkForward.CyclesTotal)
	}
	if rec.WalkForward.CyclesFailed != 0 {
		t.Errorf("CyclesFailed = %d, want 0", rec.WalkForward.CyclesFailed)
	}
	if rec.WalkForward.MeanF1 != 1 {
		t.Errorf("MeanF1 = %v, want 1 for the echo model", rec.WalkForward.MeanF1)
	}
	if rec.WalkForward.ConsistencyRate != 1 {
		t.Errorf("ConsistencyRate = %v, want 1", rec.WalkForward.ConsistencyRate)
	}
	if len(store.saved) != 1 {
		t.Fatalf("store captured %d records, want 1", len(store.saved))
	}
	for _, cycle := range rec.Cycles {
		if cycle.Result != nil && cycle.Result.DriftWarning {
			t.Errorf("cycle %d flagged drift for a perfect model", cycle.Index)
		}
	}
}

func TestWalkForwardMonteCarloAttached(t *testing.T) {
	v := NewWalkForwardValidator(echoTrainer{}, NewSplitter(20, 365*24*time.Hour),
		nil, DefaultOptions(), Monthly, 12, 0.65, 100)

	rec, err := v.Run(context.Background(), threeYearDataset())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.MonteCarlo == nil {
		t.Fatal("MonteCarlo = nil, want simulation results")
	}
	if rec.MonteCarlo.Simulations != 100 {
		t.Errorf("Simulations = %d, want 100", rec.MonteCarlo.Simulations)
	}
}

func TestWalkForwardTrainingFailuresDoNotAbort(t *testing.T) {
	v := NewWalkForwardValidator(failTrainer{}, NewSplitter(20, 365*24*time.Hour),
		nil, DefaultOptions(), Monthly, 12, 0.65, 0)

	rec, err := v.Run(context.Background(), threeYearDataset())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rec.Status != models.StatusComplete {
		t.Errorf("Status = %v, want complete even when every cycle fails", rec.Status)
	}
	if rec.WalkForward.CyclesFailed != rec.WalkForward.CyclesTotal {
		t.Errorf("CyclesFailed = %d, want all %d", rec.WalkForward.CyclesFailed, rec.WalkForward.CyclesTotal)
	}
	if rec.WalkForward.ConsistencyRate != 0 {
		t.Errorf("ConsistencyRate = %v, want 0", rec.WalkForward.ConsistencyRate)
	}

	for _, cycle := range rec.Cycles {
		if !cycle.Failed || cycle.Error == "" {
			t.Fatalf("cycle %d not marked failed: %+v", cycle.Index, cycle)
		}
	}
}

func TestWalkForwardInsufficientWindows(t *testing.T) {
	store := &memStore{}
	v := NewWalkForwardValidator(echoTrainer{}, NewSplitter(20, 365*24*time.Hour),
		store, DefaultOptions(), Monthly, 36, 0.65, 0)

	_, err := v.Run(context.Background(), threeYearDataset()) // only 24 windows
	if !errors.Is(err, ErrInsufficientWindows) {
		t.Fatalf("Run() = %v, want ErrInsufficientWindows", err)
	}
}

func TestWalkForwardCancellation(t *testing.T) {
	store := &memStore{}
	v := NewWalkForwardValidator(echoTrainer{}, NewSplitter(20, 365*24*time.Hour),
		store, DefaultOptions(), Monthly, 12, 0.65, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := v.Run(ctx, threeYearDataset())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if rec.Status != models.StatusAborted {
		t.Errorf("Status = %v, want aborted", rec.Status)
	}
	// Partial results still reach the store on abort.
	if len(store.saved) != 1 {
		t.Errorf("store captured %d records, want 1", len(store.saved))
	}
}

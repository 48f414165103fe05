package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/Alias1177/Validator/models"
)

func generateRecords(n int, generator func(int) models.Record) []models.Record {
	records := make([]models.Record, n)
	for i := 0; i < n; i++ {
		records[i] = generator(i)
	}
	return records
}

// dailyDataset builds a daily series starting at start with alternating
// breakout/none labels and resolved returns.
func dailyDataset(start time.Time, days int) models.Dataset {
	return models.Dataset{
		Instrument: "EUR/USD",
		Records: generateRecords(days, func(i int) models.Record {
			label := "none"
			ret := -0.01
			if i%2 == 0 {
				label = "breakout"
				ret = 0.02
			}
			return models.Record{
				Timestamp:  start.Add(time.Duration(i) * 24 * time.Hour),
				Instrument: "EUR/USD",
				Features:   []float64{float64(i % 10), float64(i % 3)},
				Label:      label,
				Return:     models.Float64(ret),
			}
		}),
	}
}

func TestScheduleThreeYearsMonthly(t *testing.T) {
	// Three calendar years of daily data with a one-year lookback leaves two
	// years of monthly test windows.
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := dailyDataset(start, 1096) // through 2024-12-31

	s := NewSplitter(30, 365*24*time.Hour)
	pairs, err := s.Schedule(ds, Monthly).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(pairs) != 24 {
		t.Fatalf("got %d cycles, want 24", len(pairs))
	}
	if got := pairs[0].Test.Label; got != "2023-01" {
		t.Errorf("first test label = %q, want 2023-01", got)
	}
	if got := pairs[23].Test.Label; got != "2024-12" {
		t.Errorf("last test label = %q, want 2024-12", got)
	}

	for i, pair := range pairs {
		if err := pair.Verify(); err != nil {
			t.Errorf("pair %d: %v", i, err)
		}
		if got := pair.Test.Start.Sub(pair.Train.Start); got != 365*24*time.Hour {
			t.Errorf("pair %d: training window spans %v, want 365 days", i, got)
		}
		if !pair.Train.End.Equal(pair.Test.Start) {
			t.Errorf("pair %d: train ends %v, test starts %v", i, pair.Train.End, pair.Test.Start)
		}
	}
}

func TestScheduleQuarterly(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := dailyDataset(start, 1096)

	pairs, err := NewSplitter(30, 365*24*time.Hour).Schedule(ds, Quarterly).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(pairs) != 8 {
		t.Errorf("got %d cycles, want 8", len(pairs))
	}
}

func TestScheduleEmptyDataset(t *testing.T) {
	pairs, err := NewSplitter(30, 365*24*time.Hour).Schedule(models.Dataset{}, Monthly).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("got %d cycles, want 0", len(pairs))
	}
}

func TestWindowPairVerifyLeakage(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	pair := WindowPair{
		Train: models.Period{Start: now.AddDate(-1, 0, 0), End: now.Add(time.Hour)},
		Test:  models.Period{Start: now, End: now.AddDate(0, 1, 0)},
	}
	if err := pair.Verify(); !errors.Is(err, ErrLeakage) {
		t.Errorf("Verify() = %v, want ErrLeakage", err)
	}

	pair.Train.End = now
	if err := pair.Verify(); err != nil {
		t.Errorf("Verify() on aligned windows = %v, want nil", err)
	}
}

func TestSplitAt(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := dailyDataset(start, 200)
	cut := start.Add(100 * 24 * time.Hour)

	s := NewSplitter(30, 365*24*time.Hour)
	train, test, err := s.SplitAt(ds, cut, 60*24*time.Hour)
	if err != nil {
		t.Fatalf("SplitAt() error = %v", err)
	}

	if train.Len() != 100 || test.Len() != 60 {
		t.Errorf("train=%d test=%d, want 100 and 60", train.Len(), test.Len())
	}
	if !train.End().Before(cut) {
		t.Errorf("train ends %v, want before cut %v", train.End(), cut)
	}
	if test.Start().Before(cut) {
		t.Errorf("test starts %v, want at or after cut %v", test.Start(), cut)
	}
}

func TestSplitAtInsufficientData(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := dailyDataset(start, 50)

	s := NewSplitter(30, 365*24*time.Hour)
	_, _, err := s.SplitAt(ds, start.Add(10*24*time.Hour), 30*24*time.Hour)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("SplitAt() = %v, want ErrInsufficientData", err)
	}
}

func TestSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, 0)
	if s.MinRecords != 30 {
		t.Errorf("MinRecords = %d, want 30", s.MinRecords)
	}
	if s.Lookback != 365*24*time.Hour {
		t.Errorf("Lookback = %v, want 365 days", s.Lookback)
	}
}

package validation

import (
	"fmt"
	"time"

	"github.com/Alias1177/Validator/internal/dataset"
	"github.com/Alias1177/Validator/models"
)

// Frequency is the retraining cadence of a rolling schedule.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// step advances t by one frequency unit.
func (f Frequency) step(t time.Time) time.Time {
	switch f {
	case Quarterly:
		return t.AddDate(0, 3, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Valid reports whether f is a recognized cadence.
func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// WindowPair is one causally ordered (train, test) window of a schedule.
type WindowPair struct {
	Train models.Period
	Test  models.Period
}

// Verify re-checks the leak-free invariant. Consumers call it on every pair
// they receive instead of assuming schedule generation got it right.
func (w WindowPair) Verify() error {
	if w.Train.End.After(w.Test.Start) {
		return fmt.Errorf("%w: train ends %s, test starts %s",
			ErrLeakage, w.Train.End.Format(time.RFC3339), w.Test.Start.Format(time.RFC3339))
	}
	return nil
}

// Splitter partitions a time-indexed dataset into causally ordered train and
// test slices. It is the single place window boundaries are computed.
type Splitter struct {
	MinRecords int           // minimum records per slice, default 30
	Lookback   time.Duration // rolling training window length, default 365 days
}

// NewSplitter returns a splitter with defaults applied.
func NewSplitter(minRecords int, lookback time.Duration) *Splitter {
	if minRecords <= 0 {
		minRecords = 30
	}
	if lookback <= 0 {
		lookback = 365 * 24 * time.Hour
	}
	return &Splitter{MinRecords: minRecords, Lookback: lookback}
}

// SplitAt cuts ds at t: train holds records with timestamp < t, test holds
// records in [t, t+horizon). Either slice falling below MinRecords fails the
// split.
func (s *Splitter) SplitAt(ds models.Dataset, t time.Time, horizon time.Duration) (train, test models.Dataset, err error) {
	train = dataset.Before(ds, t)
	test = dataset.Range(ds, t, t.Add(horizon))

	if train.Len() < s.MinRecords {
		return models.Dataset{}, models.Dataset{},
			fmt.Errorf("%w: train has %d records, need %d", ErrInsufficientData, train.Len(), s.MinRecords)
	}
	if test.Len() < s.MinRecords {
		return models.Dataset{}, models.Dataset{},
			fmt.Errorf("%w: test has %d records, need %d", ErrInsufficientData, test.Len(), s.MinRecords)
	}
	return train, test, nil
}

// Schedule is a lazy, finite sequence of rolling (train, test) window pairs.
// Each call to Next advances the test window by one frequency unit; the
// sequence ends when the next test window would start past the dataset's
// last timestamp.
type Schedule struct {
	freq      Frequency
	lookback  time.Duration
	testStart time.Time
	last      time.Time // last record timestamp in the dataset
	index     int
}

// Schedule builds the rolling walk-forward schedule for ds. The first test
// window starts one lookback after the first record, so the initial training
// window is fully covered by data.
func (s *Splitter) Schedule(ds models.Dataset, freq Frequency) *Schedule {
	if !freq.Valid() {
		freq = Monthly
	}
	return &Schedule{
		freq:      freq,
		lookback:  s.Lookback,
		testStart: ds.Start().Add(s.Lookback),
		last:      ds.End(),
	}
}

// Next returns the next window pair, or ok=false when the schedule is
// exhausted.
func (sc *Schedule) Next() (pair WindowPair, ok bool) {
	if sc.last.IsZero() || sc.testStart.After(sc.last) {
		return WindowPair{}, false
	}

	testEnd := sc.freq.step(sc.testStart)
	pair = WindowPair{
		Train: models.Period{
			Label: fmt.Sprintf("train-%03d", sc.index),
			Start: sc.testStart.Add(-sc.lookback),
			End:   sc.testStart,
		},
		Test: models.Period{
			Label: sc.testStart.Format("2006-01"),
			Start: sc.testStart,
			End:   testEnd,
		},
	}

	sc.testStart = testEnd
	sc.index++
	return pair, true
}

// Collect drains the schedule into a slice, verifying every pair.
func (sc *Schedule) Collect() ([]WindowPair, error) {
	var pairs []WindowPair
	for {
		pair, ok := sc.Next()
		if !ok {
			return pairs, nil
		}
		if err := pair.Verify(); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
}

package validation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Validator/internal/dataset"
	"github.com/Alias1177/Validator/internal/stats"
	"github.com/Alias1177/Validator/models"
)

// degradationSpan is the number of consecutive declining periods that counts
// as a temporal degradation pattern.
const degradationSpan = 3

// HistoricalAnalyzer evaluates a trainable model over a fixed set of named
// periods, training strictly on data before each period.
type HistoricalAnalyzer struct {
	splitter *Splitter
	trainer  models.Trainer
	store    RunStore
	opts     Options
	workers  int
	logger   zerolog.Logger
}

// NewHistoricalAnalyzer wires an analyzer. store may be nil to skip
// persistence; workers <= 0 runs periods sequentially.
func NewHistoricalAnalyzer(trainer models.Trainer, splitter *Splitter, store RunStore, opts Options, workers int) *HistoricalAnalyzer {
	if workers <= 0 {
		workers = 1
	}
	return &HistoricalAnalyzer{
		splitter: splitter,
		trainer:  trainer,
		store:    store,
		opts:     opts.normalize(),
		workers:  workers,
		logger:   log.With().Str("component", "historical_analyzer").Logger(),
	}
}

// Run evaluates every period and returns the aggregate run record. Errors
// local to one period are recorded inline in that period's result; the run
// only fails on persistence errors or cancellation.
func (a *HistoricalAnalyzer) Run(ctx context.Context, ds models.Dataset, periods []models.Period) (models.RunRecord, error) {
	rec := models.RunRecord{
		RunType:    models.RunHistorical,
		Instrument: ds.Instrument,
		StartedAt:  time.Now().UTC(),
	}

	if len(periods) == 0 {
		return rec, fmt.Errorf("%w: no periods to evaluate", ErrInsufficientData)
	}
	if err := dataset.Validate(ds); err != nil {
		return rec, fmt.Errorf("invalid dataset: %w", err)
	}

	a.logger.Info().
		Int("periods", len(periods)).
		Int("workers", a.workers).
		Str("instrument", ds.Instrument).
		Msg("Starting historical analysis")

	// Periods are independent: fan out on a bounded pool, accumulate under
	// a single mutex, then restore chronological order.
	var (
		mu      sync.Mutex
		results []models.EvaluationResult
		wg      sync.WaitGroup
		jobs    = make(chan models.Period)
	)

	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for period := range jobs {
				res := a.evaluate(ctx, ds, period)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}

	aborted := false
	for _, period := range periods {
		if ctx.Err() != nil {
			aborted = true
			break
		}
		jobs <- period
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Period.Start.Before(results[j].Period.Start)
	})
	rec.Results = results
	rec.Historical = a.summarize(results)
	rec.FinishedAt = time.Now().UTC()

	switch {
	case aborted:
		rec.Status = models.StatusAborted
	case anyFailed(results):
		rec.Status = models.StatusPartial
	default:
		rec.Status = models.StatusComplete
	}

	if err := a.persist(ctx, rec); err != nil {
		return rec, err
	}
	if aborted {
		return rec, ctx.Err()
	}
	return rec, nil
}

// evaluate trains on everything strictly before the period and evaluates on
// the period itself. Failures are recorded inline, never raised.
func (a *HistoricalAnalyzer) evaluate(ctx context.Context, ds models.Dataset, period models.Period) models.EvaluationResult {
	failed := func(err error) models.EvaluationResult {
		a.logger.Warn().Err(err).Str("period", period.Label).Msg("Period evaluation failed")
		return models.EvaluationResult{Period: period, Error: err.Error()}
	}

	train := dataset.Before(ds, period.Start)
	test := dataset.Range(ds, period.Start, period.End)

	// The leak-free invariant is re-verified here, not assumed.
	pair := WindowPair{
		Train: models.Period{Start: train.Start(), End: period.Start},
		Test:  period,
	}
	if err := pair.Verify(); err != nil {
		return failed(err)
	}

	if train.Len() < a.splitter.MinRecords {
		return failed(fmt.Errorf("%w: train has %d records, need %d", ErrInsufficientData, train.Len(), a.splitter.MinRecords))
	}
	if test.Len() < a.splitter.MinRecords {
		return failed(fmt.Errorf("%w: test has %d records, need %d", ErrInsufficientData, test.Len(), a.splitter.MinRecords))
	}

	model, err := a.trainer.Fit(ctx, train)
	if err != nil {
		return failed(fmt.Errorf("training for %s: %w", period.Label, err))
	}
	preds, err := model.Predict(ctx, test)
	if err != nil {
		return failed(fmt.Errorf("predicting for %s: %w", period.Label, err))
	}

	res := evaluatePeriod(period, test.Records, preds, a.opts)
	a.logger.Debug().
		Str("period", period.Label).
		Float64("f1", res.Classification.F1).
		Bool("drift", res.DriftWarning).
		Msg("Period evaluated")
	return res
}

// summarize aggregates period results and runs the temporal degradation
// check: a monotonic F1 decline across degradationSpan consecutive periods
// is flagged as a warning, not a failure.
func (a *HistoricalAnalyzer) summarize(results []models.EvaluationResult) *models.HistoricalSummary {
	summary := &models.HistoricalSummary{Periods: len(results)}

	var f1s []float64
	var ok []models.EvaluationResult
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		ok = append(ok, r)
		f1s = append(f1s, r.Classification.F1)
		if r.DriftWarning {
			summary.DriftPeriods = append(summary.DriftPeriods, r.Period.Label)
		}
	}

	s := stats.Summarize(f1s)
	summary.MeanF1, summary.StdF1, summary.MinF1, summary.MaxF1 = s.Mean, s.Std, s.Min, s.Max

	decline := 1
	for i := 1; i < len(ok); i++ {
		if ok[i].Classification.F1 < ok[i-1].Classification.F1 {
			decline++
		} else {
			decline = 1
		}
		if decline >= degradationSpan {
			summary.DegradationWarning = true
			summary.DegradationSpan = nil
			for j := i - decline + 1; j <= i; j++ {
				summary.DegradationSpan = append(summary.DegradationSpan, ok[j].Period.Label)
			}
		}
	}

	if summary.DegradationWarning {
		a.logger.Warn().Strs("periods", summary.DegradationSpan).Msg("Temporal degradation pattern detected")
	}
	return summary
}

func (a *HistoricalAnalyzer) persist(ctx context.Context, rec models.RunRecord) error {
	if a.store == nil {
		return nil
	}
	// Persist even when the surrounding context is cancelled; losing partial
	// results would defeat the abort semantics.
	if err := a.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		a.logger.Error().Err(err).Msg("Persisting run record failed")
		return fmt.Errorf("persisting run record: %w", err)
	}
	return nil
}

func anyFailed(results []models.EvaluationResult) bool {
	for _, r := range results {
		if r.Error != "" {
			return true
		}
	}
	return false
}

// YearlyPeriods generates calendar-year periods covering the dataset span.
func YearlyPeriods(ds models.Dataset) []models.Period {
	if ds.Len() == 0 {
		return nil
	}
	var periods []models.Period
	for y := ds.Start().Year(); y <= ds.End().Year(); y++ {
		periods = append(periods, models.Period{
			Label: fmt.Sprintf("%d", y),
			Start: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return periods
}

// QuarterlyPeriods generates calendar-quarter periods covering the dataset
// span, labeled like "2023-Q2".
func QuarterlyPeriods(ds models.Dataset) []models.Period {
	if ds.Len() == 0 {
		return nil
	}
	var periods []models.Period
	start := time.Date(ds.Start().Year(), firstMonthOfQuarter(ds.Start().Month()), 1, 0, 0, 0, 0, time.UTC)
	for cur := start; !cur.After(ds.End()); cur = cur.AddDate(0, 3, 0) {
		q := (int(cur.Month())-1)/3 + 1
		periods = append(periods, models.Period{
			Label: fmt.Sprintf("%d-Q%d", cur.Year(), q),
			Start: cur,
			End:   cur.AddDate(0, 3, 0),
		})
	}
	return periods
}

func firstMonthOfQuarter(m time.Month) time.Month {
	return time.Month((int(m)-1)/3*3 + 1)
}

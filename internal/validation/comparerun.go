package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Validator/internal/dataset"
	"github.com/Alias1177/Validator/internal/stats"
	"github.com/Alias1177/Validator/models"
)

// Candidate is one named strategy entered into a comparison run.
type Candidate struct {
	Name    string
	Trainer models.Trainer
}

// ComparisonRunner evaluates several candidate strategies over one shared
// rolling schedule, so every strategy trains and tests on identical windows,
// then ranks them through a Comparator.
type ComparisonRunner struct {
	splitter   *Splitter
	comparator *Comparator
	store      RunStore
	opts       Options
	freq       Frequency
	target     float64
	logger     zerolog.Logger
}

// NewComparisonRunner wires a runner. store may be nil to skip persistence.
func NewComparisonRunner(splitter *Splitter, comparator *Comparator, store RunStore, opts Options, freq Frequency, target float64) *ComparisonRunner {
	if target <= 0 {
		target = 0.65
	}
	if !freq.Valid() {
		freq = Monthly
	}
	return &ComparisonRunner{
		splitter:   splitter,
		comparator: comparator,
		store:      store,
		opts:       opts.normalize(),
		freq:       freq,
		target:     target,
		logger:     log.With().Str("component", "comparison_runner").Logger(),
	}
}

// Run evaluates every candidate on the shared schedule and returns the
// comparison run record.
func (r *ComparisonRunner) Run(ctx context.Context, ds models.Dataset, candidates []Candidate) (models.RunRecord, error) {
	rec := models.RunRecord{
		RunType:    models.RunComparison,
		Instrument: ds.Instrument,
		StartedAt:  time.Now().UTC(),
	}

	if len(candidates) < 2 {
		return rec, fmt.Errorf("need at least 2 candidates, got %d", len(candidates))
	}
	if err := dataset.Validate(ds); err != nil {
		return rec, fmt.Errorf("invalid dataset: %w", err)
	}

	pairs, err := r.splitter.Schedule(ds, r.freq).Collect()
	if err != nil {
		return rec, err
	}
	if len(pairs) == 0 {
		return rec, fmt.Errorf("%w: schedule yields no windows", ErrInsufficientWindows)
	}

	r.logger.Info().
		Int("candidates", len(candidates)).
		Int("windows", len(pairs)).
		Msg("Starting comparison run")

	evals := make([]models.StrategyEvaluation, 0, len(candidates))
	for _, cand := range candidates {
		// Cancellation is cooperative: checked between candidates only. The
		// evaluations gathered so far are still persisted.
		if ctx.Err() != nil {
			rec.Strategies = evals
			rec.Status = models.StatusAborted
			rec.FinishedAt = time.Now().UTC()
			if err := r.persist(ctx, rec); err != nil {
				return rec, err
			}
			return rec, ctx.Err()
		}
		evals = append(evals, r.evaluateCandidate(ctx, ds, cand, pairs))
	}

	report, err := r.comparator.Compare(evals)
	if err != nil {
		return rec, err
	}

	rec.Strategies = evals
	rec.Comparison = &report
	rec.FinishedAt = time.Now().UTC()
	rec.Status = models.StatusComplete
	if anyEvalFailed(evals) {
		rec.Status = models.StatusPartial
	}

	if err := r.persist(ctx, rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func (r *ComparisonRunner) persist(ctx context.Context, rec models.RunRecord) error {
	if r.store == nil {
		return nil
	}
	// Persist even when the surrounding context is cancelled; losing partial
	// results would defeat the abort semantics.
	if err := r.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Error().Err(err).Msg("Persisting run record failed")
		return fmt.Errorf("persisting run record: %w", err)
	}
	return nil
}

// evaluateCandidate runs one strategy over every shared window. Window-local
// failures are recorded inline so the candidate stays comparable on its
// remaining windows.
func (r *ComparisonRunner) evaluateCandidate(ctx context.Context, ds models.Dataset, cand Candidate, pairs []WindowPair) models.StrategyEvaluation {
	eval := models.StrategyEvaluation{
		Name:          cand.Name,
		SampleCorrect: map[string][]bool{},
	}

	consistent := 0
	for _, pair := range pairs {
		res, flags, seconds := r.runWindow(ctx, ds, cand, pair)
		eval.Results = append(eval.Results, res)
		eval.TrainingSeconds += seconds
		if res.Error != "" {
			continue
		}
		eval.SampleCorrect[pair.Test.Label] = flags
		if res.Classification.F1 >= r.target {
			consistent++
		}
	}
	eval.ConsistencyRate = float64(consistent) / float64(len(pairs))

	r.logger.Info().
		Str("strategy", cand.Name).
		Float64("consistency_rate", eval.ConsistencyRate).
		Float64("training_seconds", eval.TrainingSeconds).
		Msg("Candidate evaluated")
	return eval
}

func (r *ComparisonRunner) runWindow(ctx context.Context, ds models.Dataset, cand Candidate, pair WindowPair) (models.EvaluationResult, []bool, float64) {
	failed := func(err error) (models.EvaluationResult, []bool, float64) {
		r.logger.Warn().Err(err).Str("strategy", cand.Name).Str("window", pair.Test.Label).Msg("Window failed")
		return models.EvaluationResult{Period: pair.Test, Error: err.Error()}, nil, 0
	}

	if err := pair.Verify(); err != nil {
		return failed(err)
	}

	train := dataset.Range(ds, pair.Train.Start, pair.Train.End)
	test := dataset.Range(ds, pair.Test.Start, pair.Test.End)
	if train.Len() < r.splitter.MinRecords || test.Len() < r.splitter.MinRecords {
		return failed(fmt.Errorf("%w: train=%d test=%d records, need %d",
			ErrInsufficientData, train.Len(), test.Len(), r.splitter.MinRecords))
	}

	started := time.Now()
	model, err := cand.Trainer.Fit(ctx, train)
	seconds := time.Since(started).Seconds()
	if err != nil {
		res, flags, _ := failed(fmt.Errorf("training %s: %w", cand.Name, err))
		return res, flags, seconds
	}

	preds, err := model.Predict(ctx, test)
	if err != nil {
		res, flags, _ := failed(fmt.Errorf("predicting %s: %w", cand.Name, err))
		return res, flags, seconds
	}

	res := evaluatePeriod(pair.Test, test.Records, preds, r.opts)
	return res, stats.Correctness(test.Records, preds), seconds
}

func anyEvalFailed(evals []models.StrategyEvaluation) bool {
	for _, e := range evals {
		for _, res := range e.Results {
			if res.Error != "" {
				return true
			}
		}
	}
	return false
}

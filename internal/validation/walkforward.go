package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Validator/internal/dataset"
	"github.com/Alias1177/Validator/internal/stats"
	"github.com/Alias1177/Validator/internal/trading/risk"
	"github.com/Alias1177/Validator/models"
)

// RunState is the walk-forward state machine position.
type RunState string

const (
	StateInitialized RunState = "initialized"
	StateRunning     RunState = "running"
	StateCompleted   RunState = "completed"
	StateAborted     RunState = "aborted"
)

// WalkForwardValidator drives repeated retrain-then-evaluate cycles over a
// rolling window schedule and aggregates per-cycle results into a stability
// verdict.
type WalkForwardValidator struct {
	splitter  *Splitter
	trainer   models.Trainer
	store     RunStore
	opts      Options
	freq      Frequency
	minCycles int     // minimum attempted cycles, default 36
	target    float64 // F1 threshold behind the consistency rate, default 0.65
	sims      int     // Monte Carlo reshuffles over the run's trades, 0 disables
	logger    zerolog.Logger
}

// NewWalkForwardValidator wires a validator with defaults applied. store may
// be nil to skip persistence; simulations 0 disables the Monte Carlo check.
func NewWalkForwardValidator(trainer models.Trainer, splitter *Splitter, store RunStore, opts Options, freq Frequency, minCycles int, target float64, simulations int) *WalkForwardValidator {
	if minCycles <= 0 {
		minCycles = 36
	}
	if target <= 0 {
		target = 0.65
	}
	if !freq.Valid() {
		freq = Monthly
	}
	return &WalkForwardValidator{
		splitter:  splitter,
		trainer:   trainer,
		store:     store,
		opts:      opts.normalize(),
		freq:      freq,
		minCycles: minCycles,
		target:    target,
		sims:      simulations,
		logger:    log.With().Str("component", "walkforward_validator").Logger(),
	}
}

// Run executes the full walk-forward schedule. A training failure marks that
// cycle failed and the run continues; the run itself only aborts on
// cancellation or when fewer windows than the minimum exist.
func (v *WalkForwardValidator) Run(ctx context.Context, ds models.Dataset) (models.RunRecord, error) {
	state := StateInitialized
	rec := models.RunRecord{
		RunType:    models.RunWalkForward,
		Instrument: ds.Instrument,
		StartedAt:  time.Now().UTC(),
	}

	if err := dataset.Validate(ds); err != nil {
		return rec, fmt.Errorf("invalid dataset: %w", err)
	}

	pairs, err := v.splitter.Schedule(ds, v.freq).Collect()
	if err != nil {
		return rec, err
	}
	if len(pairs) < v.minCycles {
		rec.Status = models.StatusAborted
		rec.FinishedAt = time.Now().UTC()
		return rec, fmt.Errorf("%w: schedule yields %d cycles, need %d", ErrInsufficientWindows, len(pairs), v.minCycles)
	}

	state = StateRunning
	v.logger.Info().
		Int("cycles", len(pairs)).
		Str("frequency", string(v.freq)).
		Str("state", string(state)).
		Msg("Starting walk-forward run")

	cycles := make([]models.ValidationCycle, 0, len(pairs))
	var trades []models.TradeOutcome
	for i, pair := range pairs {
		// Cancellation is cooperative: checked between cycles only.
		if ctx.Err() != nil {
			state = StateAborted
			break
		}
		cycle, outcomes := v.runCycle(ctx, ds, i, pair)
		cycles = append(cycles, cycle)
		trades = append(trades, outcomes...)
	}

	if state != StateAborted {
		state = StateCompleted
	}

	rec.Cycles = cycles
	rec.WalkForward = v.summarize(cycles)
	if v.sims > 0 {
		rec.MonteCarlo = risk.Simulate(trades, v.sims, rec.StartedAt.UnixNano())
	}
	rec.FinishedAt = time.Now().UTC()
	if state == StateAborted {
		rec.Status = models.StatusAborted
	} else {
		rec.Status = models.StatusComplete
	}

	v.logger.Info().
		Str("state", string(state)).
		Int("cycles_total", rec.WalkForward.CyclesTotal).
		Int("cycles_failed", rec.WalkForward.CyclesFailed).
		Float64("mean_f1", rec.WalkForward.MeanF1).
		Float64("consistency_rate", rec.WalkForward.ConsistencyRate).
		Msg("Walk-forward run finished")

	// Partial results are persisted on abort rather than discarded.
	if err := v.persist(ctx, rec); err != nil {
		return rec, err
	}
	if state == StateAborted {
		return rec, ctx.Err()
	}
	return rec, nil
}

// runCycle trains on the cycle's rolling window and evaluates on its test
// window. Any failure is captured in the cycle record. The derived trade
// outcomes feed the run-level Monte Carlo check.
func (v *WalkForwardValidator) runCycle(ctx context.Context, ds models.Dataset, i int, pair WindowPair) (models.ValidationCycle, []models.TradeOutcome) {
	cycle := models.ValidationCycle{
		Index:       i,
		TrainWindow: pair.Train,
		TestWindow:  pair.Test,
	}

	fail := func(err error) (models.ValidationCycle, []models.TradeOutcome) {
		cycle.Failed = true
		cycle.Error = err.Error()
		v.logger.Warn().Err(err).Int("cycle", i).Msg("Cycle failed")
		return cycle, nil
	}

	// Every consumer re-verifies the leak-free invariant on the windows it
	// receives.
	if err := pair.Verify(); err != nil {
		return fail(err)
	}

	train := dataset.Range(ds, pair.Train.Start, pair.Train.End)
	test := dataset.Range(ds, pair.Test.Start, pair.Test.End)
	if train.Len() < v.splitter.MinRecords || test.Len() < v.splitter.MinRecords {
		return fail(fmt.Errorf("%w: train=%d test=%d records, need %d",
			ErrInsufficientData, train.Len(), test.Len(), v.splitter.MinRecords))
	}

	started := time.Now()
	model, err := v.trainer.Fit(ctx, train)
	cycle.TrainingSeconds = time.Since(started).Seconds()
	if err != nil {
		return fail(&CycleTrainingError{Cycle: i, Err: err})
	}

	preds, err := model.Predict(ctx, test)
	if err != nil {
		return fail(fmt.Errorf("cycle %d: prediction failed: %w", i, err))
	}

	res := evaluatePeriod(pair.Test, test.Records, preds, v.opts)
	cycle.Result = &res

	v.logger.Debug().
		Int("cycle", i).
		Str("window", pair.Test.Label).
		Float64("f1", res.Classification.F1).
		Float64("training_seconds", cycle.TrainingSeconds).
		Msg("Cycle completed")
	return cycle, deriveOutcomes(test.Records, preds, v.opts.PositiveLabel)
}

// summarize computes the stability verdict over all attempted cycles. The
// consistency rate counts successful cycles meeting the F1 target against
// every attempted cycle, so failed cycles drag it down.
func (v *WalkForwardValidator) summarize(cycles []models.ValidationCycle) *models.WalkForwardSummary {
	summary := &models.WalkForwardSummary{CyclesTotal: len(cycles)}

	var f1s []float64
	consistent := 0
	for _, c := range cycles {
		if c.Failed || c.Result == nil {
			summary.CyclesFailed++
			continue
		}
		f1 := c.Result.Classification.F1
		f1s = append(f1s, f1)
		if f1 >= v.target {
			consistent++
		}
	}

	s := stats.Summarize(f1s)
	summary.MeanF1, summary.StdF1, summary.MinF1, summary.MaxF1 = s.Mean, s.Std, s.Min, s.Max
	if summary.CyclesTotal > 0 {
		summary.ConsistencyRate = float64(consistent) / float64(summary.CyclesTotal)
	}
	return summary
}

func (v *WalkForwardValidator) persist(ctx context.Context, rec models.RunRecord) error {
	if v.store == nil {
		return nil
	}
	// Persist even when the surrounding context is cancelled; losing partial
	// results would defeat the abort semantics.
	if err := v.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		v.logger.Error().Err(err).Msg("Persisting run record failed")
		return fmt.Errorf("persisting run record: %w", err)
	}
	return nil
}

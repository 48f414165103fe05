package validation

import (
	"context"
	"sort"

	"github.com/Alias1177/Validator/internal/stats"
	"github.com/Alias1177/Validator/internal/trading/risk"
	"github.com/Alias1177/Validator/models"
)

// Options tune how a single period or cycle is evaluated.
type Options struct {
	// PositiveLabel is the class treated as a trade signal, default "breakout".
	PositiveLabel string
	// Significance is the p-value threshold for drift flagging, default 0.05.
	Significance float64
	// Risk holds the capital assumptions behind the financial metrics.
	Risk risk.Assumptions
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		PositiveLabel: "breakout",
		Significance:  0.05,
		Risk:          risk.DefaultAssumptions(),
	}
}

func (o Options) normalize() Options {
	if o.PositiveLabel == "" {
		o.PositiveLabel = "breakout"
	}
	if o.Significance <= 0 {
		o.Significance = 0.05
	}
	if o.Risk.PeriodsPerYear <= 0 {
		o.Risk.PeriodsPerYear = 252
	}
	return o
}

// RunStore persists finished run records. Implementations live in the report
// and database packages; a nil store skips persistence.
type RunStore interface {
	Save(ctx context.Context, rec models.RunRecord) error
}

// evaluatePeriod turns ground truth and predictions for one period into an
// immutable EvaluationResult: classification metrics, risk metrics where
// trade outcomes are derivable, and the label-drift test.
func evaluatePeriod(period models.Period, records []models.Record, preds []models.Prediction, opts Options) models.EvaluationResult {
	res := models.EvaluationResult{
		Period:         period,
		Samples:        len(records),
		Classification: stats.Evaluate(records, preds, opts.PositiveLabel),
	}

	if outcomes := deriveOutcomes(records, preds, opts.PositiveLabel); len(outcomes) > 0 {
		rm := risk.Calculate(outcomes, opts.Risk)
		res.Risk = &rm
	}

	predCounts, actCounts := labelCounts(records, preds)
	drift := stats.ChiSquareDistributions(predCounts, actCounts)
	res.DriftPValue = models.Float64(drift.PValue)
	res.DriftWarning = drift.PValue < opts.Significance

	return res
}

// deriveOutcomes builds simulated trades from predictions: a trade is taken
// whenever the model signals the positive class and the record's realized
// return has resolved. The holding period is one record step.
func deriveOutcomes(records []models.Record, preds []models.Prediction, positive string) []models.TradeOutcome {
	n := len(records)
	if len(preds) < n {
		n = len(preds)
	}

	var outcomes []models.TradeOutcome
	for i := 0; i < n; i++ {
		if preds[i].Label != positive || records[i].Return == nil {
			continue
		}
		ret := *records[i].Return
		exit := records[i].Timestamp
		if i+1 < len(records) {
			exit = records[i+1].Timestamp
		}
		outcomes = append(outcomes, models.TradeOutcome{
			EntryTime: records[i].Timestamp,
			ExitTime:  exit,
			Return:    ret,
			Win:       ret > 0,
		})
	}
	return outcomes
}

// labelCounts tallies predicted and actual class counts over the union of
// observed labels, aligned by index for the chi-square test.
func labelCounts(records []models.Record, preds []models.Prediction) (predicted, actual []int) {
	idx := make(map[string]int)
	var labels []string
	add := func(label string) int {
		if i, ok := idx[label]; ok {
			return i
		}
		idx[label] = len(labels)
		labels = append(labels, label)
		return len(labels) - 1
	}

	for _, r := range records {
		add(r.Label)
	}
	for _, p := range preds {
		add(p.Label)
	}
	sort.Strings(labels)
	idx = make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}

	predicted = make([]int, len(labels))
	actual = make([]int, len(labels))
	for _, r := range records {
		actual[idx[r.Label]]++
	}
	for _, p := range preds {
		predicted[idx[p.Label]]++
	}
	return predicted, actual
}

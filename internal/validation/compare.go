package validation

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Validator/internal/stats"
	"github.com/Alias1177/Validator/models"
)

// Pairwise test method names, resolved once per comparison.
const (
	MethodMcNemar   = "mcnemar"
	MethodChiSquare = "chi_square"
)

// DefaultWeights is the composite-score weighting used when the caller
// supplies none. Weights need not sum to 1; the composite is a raw weighted
// sum.
var DefaultWeights = map[string]float64{
	"f1":            0.4,
	"sharpe":        0.3,
	"consistency":   0.2,
	"training_time": 0.1,
}

// Comparator ranks already-evaluated strategies and tests pairwise
// significance. It never re-trains; it is a pure aggregation layer.
type Comparator struct {
	weights      map[string]float64
	significance float64
	logger       zerolog.Logger
}

// NewComparator builds a comparator. nil weights fall back to
// DefaultWeights; significance <= 0 falls back to 0.05.
func NewComparator(weights map[string]float64, significance float64) *Comparator {
	if len(weights) == 0 {
		weights = DefaultWeights
	}
	if significance <= 0 {
		significance = 0.05
	}
	return &Comparator{
		weights:      weights,
		significance: significance,
		logger:       log.With().Str("component", "strategy_comparator").Logger(),
	}
}

// Compare ranks the candidate strategies over their shared periods. All
// candidates must have been evaluated over the same period set; otherwise
// the comparison fails with ErrMisalignedPeriods.
func (c *Comparator) Compare(evals []models.StrategyEvaluation) (models.ComparisonReport, error) {
	if len(evals) < 2 {
		return models.ComparisonReport{}, fmt.Errorf("need at least 2 strategies, got %d", len(evals))
	}

	labels, err := alignedPeriods(evals)
	if err != nil {
		return models.ComparisonReport{}, err
	}

	report := models.ComparisonReport{
		PeriodLabels: labels,
		Method:       c.chooseMethod(evals, labels),
	}

	scores := make([]models.StrategyScore, len(evals))
	for i, e := range evals {
		scores[i] = c.score(e)
	}

	// Descending composite, ties by higher Sharpe then lower training time.
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Composite != scores[j].Composite {
			return scores[i].Composite > scores[j].Composite
		}
		if scores[i].MeanSharpe != scores[j].MeanSharpe {
			return scores[i].MeanSharpe > scores[j].MeanSharpe
		}
		return scores[i].TrainingSeconds < scores[j].TrainingSeconds
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	report.Rankings = scores

	for i := 0; i < len(evals); i++ {
		for j := i + 1; j < len(evals); j++ {
			report.Pairwise = append(report.Pairwise, c.testPair(evals[i], evals[j], labels, report.Method))
		}
	}

	c.logger.Info().
		Int("strategies", len(evals)).
		Str("method", report.Method).
		Str("best", report.Rankings[0].Name).
		Msg("Comparison finished")
	return report, nil
}

// alignedPeriods verifies every strategy covers the same period set and
// returns the shared labels in chronological order.
func alignedPeriods(evals []models.StrategyEvaluation) ([]string, error) {
	ref := evals[0].Results
	labels := make([]string, len(ref))
	for i, r := range ref {
		labels[i] = r.Period.Label
	}

	for _, e := range evals[1:] {
		if len(e.Results) != len(ref) {
			return nil, fmt.Errorf("%w: %q has %d periods, %q has %d",
				ErrMisalignedPeriods, e.Name, len(e.Results), evals[0].Name, len(ref))
		}
		for i, r := range e.Results {
			if r.Period.Label != labels[i] {
				return nil, fmt.Errorf("%w: %q period %d is %q, expected %q",
					ErrMisalignedPeriods, e.Name, i, r.Period.Label, labels[i])
			}
		}
	}
	return labels, nil
}

// chooseMethod resolves the significance test once per comparison: McNemar
// when every strategy carries per-sample correctness flags of equal length
// for every shared period, aggregate chi-square otherwise.
func (c *Comparator) chooseMethod(evals []models.StrategyEvaluation, labels []string) string {
	for _, label := range labels {
		var want = -1
		for _, e := range evals {
			flags, ok := e.SampleCorrect[label]
			if !ok || len(flags) == 0 {
				return MethodChiSquare
			}
			if want == -1 {
				want = len(flags)
			} else if len(flags) != want {
				return MethodChiSquare
			}
		}
	}
	return MethodMcNemar
}

// score computes one strategy's composite as a raw weighted sum over mean
// F1, mean Sharpe, consistency rate and inverted training time (faster is
// better).
func (c *Comparator) score(e models.StrategyEvaluation) models.StrategyScore {
	var f1s, sharpes []float64
	for _, r := range e.Results {
		if r.Error != "" {
			continue
		}
		f1s = append(f1s, r.Classification.F1)
		if r.Risk != nil && r.Risk.SharpeRatio != nil {
			sharpes = append(sharpes, *r.Risk.SharpeRatio)
		}
	}

	score := models.StrategyScore{
		Name:            e.Name,
		MeanF1:          stats.Summarize(f1s).Mean,
		MeanSharpe:      stats.Summarize(sharpes).Mean,
		ConsistencyRate: e.ConsistencyRate,
		TrainingSeconds: e.TrainingSeconds,
	}

	invertedTime := 1 / (1 + e.TrainingSeconds)
	score.Composite = c.weights["f1"]*score.MeanF1 +
		c.weights["sharpe"]*score.MeanSharpe +
		c.weights["consistency"]*score.ConsistencyRate +
		c.weights["training_time"]*invertedTime
	return score
}

// testPair runs the resolved significance test for one strategy pair.
func (c *Comparator) testPair(a, b models.StrategyEvaluation, labels []string, method string) models.PairwiseTest {
	var result stats.TestResult

	if method == MethodMcNemar {
		var aFlags, bFlags []bool
		for _, label := range labels {
			aFlags = append(aFlags, a.SampleCorrect[label]...)
			bFlags = append(bFlags, b.SampleCorrect[label]...)
		}
		result = stats.McNemar(aFlags, bFlags)
	} else {
		aCorrect, aWrong := correctCounts(a)
		bCorrect, bWrong := correctCounts(b)
		result = stats.ChiSquare2x2(aCorrect, aWrong, bCorrect, bWrong)
	}

	return models.PairwiseTest{
		A:           a.Name,
		B:           b.Name,
		Method:      method,
		Statistic:   result.Statistic,
		PValue:      result.PValue,
		Significant: result.PValue < c.significance,
	}
}

// correctCounts aggregates correct and incorrect sample counts from the
// confusion matrices across all periods.
func correctCounts(e models.StrategyEvaluation) (correct, wrong int) {
	for _, r := range e.Results {
		if r.Error != "" {
			continue
		}
		correct += r.Classification.Confusion.TruePositives + r.Classification.Confusion.TrueNegatives
		wrong += r.Classification.Confusion.FalsePositives + r.Classification.Confusion.FalseNegatives
	}
	return correct, wrong
}

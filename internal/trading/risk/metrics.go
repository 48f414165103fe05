package risk

import (
	"math"
	"sort"

	"github.com/Alias1177/Validator/models"
)

// Assumptions holds the capital model behind the risk metrics: a flat stake
// per trade, an annual risk-free rate and the number of trading periods per
// year used for annualization.
type Assumptions struct {
	RiskFreeRate   float64 // annual, default 0
	PeriodsPerYear float64 // default 252 for daily outcomes
}

// DefaultAssumptions returns the flat-stake daily-trading defaults.
func DefaultAssumptions() Assumptions {
	return Assumptions{RiskFreeRate: 0, PeriodsPerYear: 252}
}

func (a Assumptions) normalize() Assumptions {
	if a.PeriodsPerYear <= 0 {
		a.PeriodsPerYear = 252
	}
	return a
}

// Calculate converts an ordered sequence of trade outcomes into risk metrics.
// Outcomes are re-sorted by entry time first, so the result depends only on
// the chronological return sequence, not on insertion order. The function is
// pure and safe to call concurrently on independent sequences.
//
// Conventions: Sortino is 0 (not unbounded) when there are no negative
// periods; profit factor is nil (unbounded) when gross losses are zero; with
// fewer than 2 trades every ratio is nil.
func Calculate(outcomes []models.TradeOutcome, a Assumptions) models.RiskMetrics {
	a = a.normalize()

	trades := make([]models.TradeOutcome, len(outcomes))
	copy(trades, outcomes)
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryTime.Before(trades[j].EntryTime)
	})

	m := models.RiskMetrics{TotalTrades: len(trades)}

	var wins int
	var grossWins, grossLosses float64
	consecutive := 0
	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.Return
		if t.Win {
			wins++
			grossWins += t.Return
			consecutive = 0
		} else {
			grossLosses += math.Abs(t.Return)
			consecutive++
			if consecutive > m.MaxConsecutiveLosses {
				m.MaxConsecutiveLosses = consecutive
			}
		}
	}

	if len(trades) > 0 {
		m.WinRate = float64(wins) / float64(len(trades))
		if grossLosses > 0 {
			m.ProfitFactor = models.Float64(grossWins / grossLosses)
		}
	}

	m.MaxDrawdown = maxDrawdown(returns)

	// Ratio metrics are undefined, not zero, below 2 trades: a single
	// observation has no spread to measure risk with.
	if len(trades) < 2 {
		m.ProfitFactor = nil
		return m
	}

	mean := meanOf(returns)
	std := sampleStdDev(returns, mean)

	perPeriodRF := a.RiskFreeRate / a.PeriodsPerYear
	if std > 0 {
		m.SharpeRatio = models.Float64((mean - perPeriodRF) / std * math.Sqrt(a.PeriodsPerYear))
	}

	downside := downsideDeviation(returns)
	switch {
	case downside > 0:
		m.SortinoRatio = models.Float64((mean - perPeriodRF) / downside * math.Sqrt(a.PeriodsPerYear))
	default:
		// No negative periods: report 0 rather than an unbounded ratio.
		m.SortinoRatio = models.Float64(0)
	}

	return m
}

// maxDrawdown computes the largest peak-to-trough decline of the compounded
// cumulative-return curve in a single forward scan.
func maxDrawdown(returns []float64) float64 {
	equity := 1.0
	peak := 1.0
	maxDD := 0.0

	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if dd := (peak - equity) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// downsideDeviation is the population standard deviation of the negative
// returns only.
func downsideDeviation(returns []float64) float64 {
	var negatives []float64
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return 0
	}

	mean := meanOf(negatives)
	var sumSq float64
	for _, r := range negatives {
		d := r - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(negatives)))
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

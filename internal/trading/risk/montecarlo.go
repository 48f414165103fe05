package risk

import (
	"math/rand"
	"sort"

	"github.com/Alias1177/Validator/models"
)

const minTradesForSimulation = 10

// Simulate runs a Monte Carlo robustness check: trade returns are reshuffled
// repeatedly to estimate how sensitive the equity outcome is to trade order.
// Returns nil when the outcome sequence is too short to be informative.
func Simulate(outcomes []models.TradeOutcome, simulations int, seed int64) *models.MonteCarloResults {
	if len(outcomes) < minTradesForSimulation || simulations < 10 {
		return nil
	}

	returns := make([]float64, len(outcomes))
	for i, t := range outcomes {
		returns[i] = t.Return
	}

	rng := rand.New(rand.NewSource(seed))
	results := make([]models.SimulationResult, simulations)

	// Only a handful of equity curves are kept; consumers want the
	// percentile spread, not every path.
	const maxStoredCurves = 10

	for sim := 0; sim < simulations; sim++ {
		shuffled := make([]float64, len(returns))
		copy(shuffled, returns)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		equity := 1.0
		peak := 1.0
		maxDD := 0.0
		curve := []float64{equity}
		for _, r := range shuffled {
			equity *= 1 + r
			curve = append(curve, equity)
			if equity > peak {
				peak = equity
			}
			if dd := (peak - equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}

		res := models.SimulationResult{
			FinalBalance: equity,
			TotalReturn:  (equity - 1) * 100,
			MaxDrawdown:  maxDD * 100,
		}
		if sim < maxStoredCurves {
			res.EquityCurve = curve
		}
		results[sim] = res
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].TotalReturn < results[j].TotalReturn
	})

	var sumDD float64
	var worstDD float64
	profitable := 0
	for _, r := range results {
		sumDD += r.MaxDrawdown
		if r.MaxDrawdown > worstDD {
			worstDD = r.MaxDrawdown
		}
		if r.TotalReturn > 0 {
			profitable++
		}
	}

	return &models.MonteCarloResults{
		Simulations: simulations,
		Returns: models.MonteCarloPercentiles{
			Worst:  results[0].TotalReturn,
			P10:    results[simulations/10].TotalReturn,
			P25:    results[simulations/4].TotalReturn,
			Median: results[simulations/2].TotalReturn,
			P75:    results[simulations*3/4].TotalReturn,
			P90:    results[simulations*9/10].TotalReturn,
			Best:   results[simulations-1].TotalReturn,
		},
		AverageDrawdown:     sumDD / float64(simulations),
		WorstDrawdown:       worstDD,
		ProbabilityOfProfit: float64(profitable) / float64(simulations) * 100,
	}
}

package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestResult is the outcome of a statistical significance test.
type TestResult struct {
	Statistic float64
	PValue    float64
	DF        int
}

// ChiSquareDistributions tests whether the predicted label distribution
// differs from the actual one. Counts are aligned by index over the same
// label set. Labels absent from both rows are ignored.
func ChiSquareDistributions(predicted, actual []int) TestResult {
	var cols int
	n := len(predicted)
	if len(actual) < n {
		n = len(actual)
	}

	var rowPred, rowAct float64
	colTotals := make([]float64, n)
	for i := 0; i < n; i++ {
		colTotals[i] = float64(predicted[i] + actual[i])
		rowPred += float64(predicted[i])
		rowAct += float64(actual[i])
		if colTotals[i] > 0 {
			cols++
		}
	}

	total := rowPred + rowAct
	if total == 0 || cols < 2 {
		return TestResult{PValue: 1}
	}

	var chi2 float64
	for i := 0; i < n; i++ {
		if colTotals[i] == 0 {
			continue
		}
		expPred := rowPred * colTotals[i] / total
		expAct := rowAct * colTotals[i] / total
		if expPred > 0 {
			d := float64(predicted[i]) - expPred
			chi2 += d * d / expPred
		}
		if expAct > 0 {
			d := float64(actual[i]) - expAct
			chi2 += d * d / expAct
		}
	}

	df := cols - 1
	return TestResult{Statistic: chi2, PValue: chiSquareSurvival(chi2, df), DF: df}
}

// ChiSquare2x2 runs a chi-square test on a 2x2 contingency table
// [[a, b], [c, d]], e.g. correct/incorrect counts of two strategies.
func ChiSquare2x2(a, b, c, d int) TestResult {
	af, bf, cf, df := float64(a), float64(b), float64(c), float64(d)
	total := af + bf + cf + df
	if total == 0 {
		return TestResult{PValue: 1, DF: 1}
	}

	row1, row2 := af+bf, cf+df
	col1, col2 := af+cf, bf+df
	if row1 == 0 || row2 == 0 || col1 == 0 || col2 == 0 {
		return TestResult{PValue: 1, DF: 1}
	}

	var chi2 float64
	for _, cell := range []struct{ obs, exp float64 }{
		{af, row1 * col1 / total},
		{bf, row1 * col2 / total},
		{cf, row2 * col1 / total},
		{df, row2 * col2 / total},
	} {
		diff := cell.obs - cell.exp
		chi2 += diff * diff / cell.exp
	}
	return TestResult{Statistic: chi2, PValue: chiSquareSurvival(chi2, 1), DF: 1}
}

// McNemar runs McNemar's test with continuity correction on paired
// per-sample correctness flags of two strategies.
func McNemar(a, b []bool) TestResult {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var aOnly, bOnly float64 // discordant pairs
	for i := 0; i < n; i++ {
		switch {
		case a[i] && !b[i]:
			aOnly++
		case !a[i] && b[i]:
			bOnly++
		}
	}

	if aOnly+bOnly == 0 {
		return TestResult{PValue: 1, DF: 1}
	}

	diff := math.Abs(aOnly-bOnly) - 1
	if diff < 0 {
		diff = 0
	}
	chi2 := diff * diff / (aOnly + bOnly)
	return TestResult{Statistic: chi2, PValue: chiSquareSurvival(chi2, 1), DF: 1}
}

// Summary holds the spread of a metric across periods or cycles.
type Summary struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Summarize computes mean, sample standard deviation, min and max of xs.
// The zero Summary is returned for an empty input; Std is 0 for a single
// observation.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}

	s := Summary{
		Mean: stat.Mean(xs, nil),
		Min:  xs[0],
		Max:  xs[0],
	}
	if len(xs) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}
	for _, x := range xs[1:] {
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	return s
}

func chiSquareSurvival(x float64, df int) float64 {
	if df <= 0 {
		return 1
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(x)
}

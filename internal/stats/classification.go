package stats

import (
	"sort"

	"github.com/Alias1177/Validator/models"
)

// Evaluate computes binary classification metrics for the positive class,
// pairing predictions with ground-truth records by index.
func Evaluate(records []models.Record, preds []models.Prediction, positive string) models.ClassificationMetrics {
	var m models.ClassificationMetrics

	n := len(records)
	if len(preds) < n {
		n = len(preds)
	}

	for i := 0; i < n; i++ {
		predPos := preds[i].Label == positive
		actualPos := records[i].Label == positive
		switch {
		case predPos && actualPos:
			m.Confusion.TruePositives++
		case predPos && !actualPos:
			m.Confusion.FalsePositives++
		case !predPos && actualPos:
			m.Confusion.FalseNegatives++
		default:
			m.Confusion.TrueNegatives++
		}
	}

	tp := float64(m.Confusion.TruePositives)
	fp := float64(m.Confusion.FalsePositives)
	fn := float64(m.Confusion.FalseNegatives)

	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	if auc, ok := rocAUC(records[:n], preds[:n], positive); ok {
		m.ROCAUC = models.Float64(auc)
	}
	return m
}

// Correctness returns the per-sample correctness flags used for paired
// significance testing.
func Correctness(records []models.Record, preds []models.Prediction) []bool {
	n := len(records)
	if len(preds) < n {
		n = len(preds)
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = records[i].Label == preds[i].Label
	}
	return out
}

// rocAUC computes the area under the ROC curve by the midrank method.
// Unavailable (ok=false) when scores carry no information or only one class
// is present.
func rocAUC(records []models.Record, preds []models.Prediction, positive string) (float64, bool) {
	type scored struct {
		score float64
		pos   bool
	}

	var xs []scored
	allEqual := true
	for i := range preds {
		if i > 0 && preds[i].Score != preds[0].Score {
			allEqual = false
		}
		xs = append(xs, scored{score: preds[i].Score, pos: records[i].Label == positive})
	}
	if len(xs) == 0 || allEqual {
		return 0, false
	}

	sort.Slice(xs, func(i, j int) bool { return xs[i].score < xs[j].score })

	// Midranks over tied scores
	ranks := make([]float64, len(xs))
	for i := 0; i < len(xs); {
		j := i
		for j < len(xs) && xs[j].score == xs[i].score {
			j++
		}
		mid := float64(i+j+1) / 2 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[k] = mid
		}
		i = j
	}

	var posRankSum float64
	var nPos, nNeg float64
	for i, x := range xs {
		if x.pos {
			posRankSum += ranks[i]
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, false
	}
	return (posRankSum - nPos*(nPos+1)/2) / (nPos * nNeg), true
}

package models

import (
	"time"
)

// RunType identifies which driver produced a run record.
type RunType string

const (
	RunHistorical  RunType = "historical"
	RunWalkForward RunType = "walk_forward"
	RunComparison  RunType = "comparison"
)

// RunStatus distinguishes complete runs from partial or aborted ones so that
// downstream consumers never mistake a partial run for a full one.
type RunStatus string

const (
	StatusComplete RunStatus = "complete"
	StatusPartial  RunStatus = "partial"
	StatusAborted  RunStatus = "aborted"
)

// Record is a single labeled observation in a time series.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Instrument string    `json:"instrument,omitempty"`
	Features   []float64 `json:"features,omitempty"`
	Label      string    `json:"label"`
	Return     *float64  `json:"return,omitempty"` // realized return, nil until the outcome resolves
}

// Dataset is an ordered, labeled time series for one instrument or universe.
// Timestamps are non-decreasing; per instrument they are strictly increasing.
type Dataset struct {
	Instrument string   `json:"instrument"`
	Records    []Record `json:"records"`
}

func (d Dataset) Len() int { return len(d.Records) }

// Start returns the timestamp of the first record, zero when empty.
func (d Dataset) Start() time.Time {
	if len(d.Records) == 0 {
		return time.Time{}
	}
	return d.Records[0].Timestamp
}

// End returns the timestamp of the last record, zero when empty.
func (d Dataset) End() time.Time {
	if len(d.Records) == 0 {
		return time.Time{}
	}
	return d.Records[len(d.Records)-1].Timestamp
}

// Period is a half-open interval [Start, End) with a human label such as "2023-Q2".
type Period struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the half-open interval.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Prediction is one model output aligned by index with the test records.
type Prediction struct {
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
	Score     float64   `json:"score"` // signal strength, used for ranking metrics when present
}

// TradeOutcome is one realized or simulated trade. Never mutated after creation.
type TradeOutcome struct {
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
	Return    float64   `json:"return"` // percentage return of the trade
	Win       bool      `json:"win"`
}

// ConfusionCounts holds the binary confusion matrix for the positive class.
type ConfusionCounts struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// ClassificationMetrics holds per-period classification quality numbers.
type ClassificationMetrics struct {
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	ROCAUC    *float64        `json:"roc_auc"` // nil when prediction scores are unavailable
	Confusion ConfusionCounts `json:"confusion"`
}

// RiskMetrics holds financial risk numbers derived from a trade sequence.
// Ratios that cannot be computed are nil rather than zero, so consumers
// never read "no data" as "no risk".
type RiskMetrics struct {
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	SortinoRatio         *float64 `json:"sortino_ratio"`
	MaxDrawdown          float64  `json:"max_drawdown"`
	WinRate              float64  `json:"win_rate"`
	ProfitFactor         *float64 `json:"profit_factor"` // nil when gross losses are zero (unbounded)
	MaxConsecutiveLosses int      `json:"max_consecutive_losses"`
	TotalTrades          int      `json:"total_trades"`
}

// EvaluationResult is produced once per period or cycle and immutable after.
type EvaluationResult struct {
	Period         Period                `json:"period"`
	Samples        int                   `json:"samples"`
	Classification ClassificationMetrics `json:"classification"`
	Risk           *RiskMetrics          `json:"risk,omitempty"`
	DriftPValue    *float64              `json:"drift_p_value,omitempty"`
	DriftWarning   bool                  `json:"drift_warning,omitempty"`
	Error          string                `json:"error,omitempty"` // local failure, recorded inline
}

// ValidationCycle is one walk-forward iteration: a training window, a test
// window, the trained model's evaluation and the time training took.
type ValidationCycle struct {
	Index           int               `json:"index"`
	TrainWindow     Period            `json:"train_window"`
	TestWindow      Period            `json:"test_window"`
	Result          *EvaluationResult `json:"result,omitempty"`
	TrainingSeconds float64           `json:"training_seconds"`
	Failed          bool              `json:"failed"`
	Error           string            `json:"error,omitempty"`
}

// WalkForwardSummary aggregates a full walk-forward run.
type WalkForwardSummary struct {
	CyclesTotal     int     `json:"cycles_total"`
	CyclesFailed    int     `json:"cycles_failed"`
	MeanF1          float64 `json:"mean_f1"`
	StdF1           float64 `json:"std_f1"` // consistency measure, lower is better
	MinF1           float64 `json:"min_f1"`
	MaxF1           float64 `json:"max_f1"`
	ConsistencyRate float64 `json:"consistency_rate"`
}

// HistoricalSummary aggregates a historical analysis run.
type HistoricalSummary struct {
	Periods            int      `json:"periods"`
	MeanF1             float64  `json:"mean_f1"`
	StdF1              float64  `json:"std_f1"`
	MinF1              float64  `json:"min_f1"`
	MaxF1              float64  `json:"max_f1"`
	DegradationWarning bool     `json:"degradation_warning"`
	DegradationSpan    []string `json:"degradation_span,omitempty"` // period labels of the declining stretch
	DriftPeriods       []string `json:"drift_periods,omitempty"`
}

// StrategyEvaluation is the comparator's input: one strategy already evaluated
// over a fixed set of periods by the historical or walk-forward driver.
type StrategyEvaluation struct {
	Name            string             `json:"name"`
	Results         []EvaluationResult `json:"results"`
	TrainingSeconds float64            `json:"training_seconds"`
	ConsistencyRate float64            `json:"consistency_rate"`
	// SampleCorrect holds per-sample correctness flags keyed by period label.
	// When every compared strategy carries aligned flags, McNemar's test is
	// used; otherwise the comparator falls back to aggregate chi-square.
	SampleCorrect map[string][]bool `json:"sample_correct,omitempty"`
}

// StrategyScore is one ranked row of a comparison report.
type StrategyScore struct {
	Name            string  `json:"name"`
	Composite       float64 `json:"composite"`
	MeanF1          float64 `json:"mean_f1"`
	MeanSharpe      float64 `json:"mean_sharpe"`
	ConsistencyRate float64 `json:"consistency_rate"`
	TrainingSeconds float64 `json:"training_seconds"`
	Rank            int     `json:"rank"`
}

// PairwiseTest records one significance test between two strategies.
type PairwiseTest struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	Method      string  `json:"method"` // "mcnemar" or "chi_square"
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// ComparisonReport is created once per comparison run and immutable after.
type ComparisonReport struct {
	PeriodLabels []string        `json:"period_labels"`
	Method       string          `json:"method"`
	Rankings     []StrategyScore `json:"rankings"`
	Pairwise     []PairwiseTest  `json:"pairwise"`
}

// SimulationResult is the outcome of one Monte Carlo trade reshuffle.
type SimulationResult struct {
	FinalBalance float64   `json:"final_balance"`
	TotalReturn  float64   `json:"total_return"`
	MaxDrawdown  float64   `json:"max_drawdown"`
	EquityCurve  []float64 `json:"equity_curve,omitempty"`
}

// MonteCarloPercentiles summarizes simulated return percentiles.
type MonteCarloPercentiles struct {
	Worst  float64 `json:"worst"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Best   float64 `json:"best"`
}

// MonteCarloResults summarizes a full reshuffling simulation.
type MonteCarloResults struct {
	Simulations         int                   `json:"simulations"`
	Returns             MonteCarloPercentiles `json:"returns"`
	AverageDrawdown     float64               `json:"average_drawdown"`
	WorstDrawdown       float64               `json:"worst_drawdown"`
	ProbabilityOfProfit float64               `json:"probability_of_profit"`
}

// RunRecord is the single persisted artifact per run. All metrics are plain
// numbers or null; the status field tells consumers how much of the run it
// covers.
type RunRecord struct {
	RunType     RunType              `json:"run_type"`
	Status      RunStatus            `json:"status"`
	Instrument  string               `json:"instrument,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
	FinishedAt  time.Time            `json:"finished_at"`
	Results     []EvaluationResult   `json:"results,omitempty"`    // historical runs
	Cycles      []ValidationCycle    `json:"cycles,omitempty"`     // walk-forward runs
	Strategies  []StrategyEvaluation `json:"strategies,omitempty"` // comparison runs
	Historical  *HistoricalSummary   `json:"historical,omitempty"`
	WalkForward *WalkForwardSummary  `json:"walk_forward,omitempty"`
	Comparison  *ComparisonReport    `json:"comparison,omitempty"`
	MonteCarlo  *MonteCarloResults   `json:"monte_carlo,omitempty"`
}

// Float64 returns a pointer to v. Convenience for nullable metrics.
func Float64(v float64) *float64 { return &v }

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alias1177/Validator/internal/config"
	"github.com/Alias1177/Validator/internal/validation"
)

func compareCmd(cfg *config.Config) *cobra.Command {
	var (
		csvPath  string
		from, to string
		freq     string
		names    string
		profile  string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare strategies over identical validation windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), cfg, csvPath, from, to)
			if err != nil {
				return err
			}

			var candidates []validation.Candidate
			for _, name := range strings.Split(names, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				trainer, err := trainerByName(name)
				if err != nil {
					return err
				}
				candidates = append(candidates, validation.Candidate{Name: name, Trainer: trainer})
			}
			if len(candidates) < 2 {
				return fmt.Errorf("need at least 2 strategies, got %d", len(candidates))
			}

			prof, err := config.LoadProfile(profile)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}

			runner := validation.NewComparisonRunner(
				newSplitter(cfg),
				validation.NewComparator(prof.WeightMap(), prof.Significance),
				store, newOptions(cfg), validation.Frequency(freq), cfg.TargetF1,
			)
			rec, err := runner.Run(cmd.Context(), ds, candidates)
			if err != nil {
				return err
			}
			logSummary(rec)

			for _, score := range rec.Comparison.Rankings {
				fmt.Printf("%d. %-12s composite=%.4f mean_f1=%.4f sharpe=%.4f consistency=%.2f\n",
					score.Rank, score.Name, score.Composite, score.MeanF1, score.MeanSharpe, score.ConsistencyRate)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "local CSV dataset path")
	cmd.Flags().StringVar(&from, "from", "", "dataset service range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "dataset service range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&freq, "frequency", cfg.Frequency, "shared window cadence: monthly|quarterly|yearly")
	cmd.Flags().StringVar(&names, "strategies", "threshold,majority", "comma-separated strategies")
	cmd.Flags().StringVar(&profile, "profile", "", "comparison profile YAML path")
	return cmd
}

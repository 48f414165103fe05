package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alias1177/Validator/internal/config"
	"github.com/Alias1177/Validator/internal/strategy"
	"github.com/Alias1177/Validator/internal/validation"
	"github.com/Alias1177/Validator/models"
)

func historicalCmd(cfg *config.Config) *cobra.Command {
	var (
		csvPath     string
		from, to    string
		granularity string
		name        string
	)
	cmd := &cobra.Command{
		Use:   "historical",
		Short: "Evaluate a strategy over past calendar periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), cfg, csvPath, from, to)
			if err != nil {
				return err
			}

			var periods []models.Period
			switch granularity {
			case "yearly":
				periods = validation.YearlyPeriods(ds)
			case "quarterly":
				periods = validation.QuarterlyPeriods(ds)
			default:
				return fmt.Errorf("unsupported granularity: %s", granularity)
			}

			trainer, err := trainerByName(name)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}

			analyzer := validation.NewHistoricalAnalyzer(trainer, newSplitter(cfg), store, newOptions(cfg), cfg.Workers)
			rec, err := analyzer.Run(cmd.Context(), ds, periods)
			if err != nil {
				return err
			}
			logSummary(rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "local CSV dataset path")
	cmd.Flags().StringVar(&from, "from", "", "dataset service range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "dataset service range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&granularity, "granularity", "yearly", "period granularity: yearly|quarterly")
	cmd.Flags().StringVar(&name, "strategy", "threshold", "strategy: threshold|majority")
	return cmd
}

func trainerByName(name string) (models.Trainer, error) {
	switch name {
	case "threshold":
		return strategy.NewThresholdStrategy(), nil
	case "majority":
		return strategy.NewMajorityStrategy(), nil
	}
	return nil, fmt.Errorf("unknown strategy: %s", name)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/Alias1177/Validator/internal/config"
	"github.com/Alias1177/Validator/internal/validation"
)

func walkforwardCmd(cfg *config.Config) *cobra.Command {
	var (
		csvPath  string
		from, to string
		freq     string
		name     string
	)
	cmd := &cobra.Command{
		Use:   "walkforward",
		Short: "Run walk-forward validation with rolling retraining",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd.Context(), cfg, csvPath, from, to)
			if err != nil {
				return err
			}
			trainer, err := trainerByName(name)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}

			v := validation.NewWalkForwardValidator(
				trainer, newSplitter(cfg), store, newOptions(cfg),
				validation.Frequency(freq), cfg.MinCycles, cfg.TargetF1, cfg.Simulations,
			)
			rec, err := v.Run(cmd.Context(), ds)
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
	cmd.Flags().StringVar(&freq, "frequency", cfg.Frequency, "retraining cadence: monthly|quarterly|yearly")
	cmd.Flags().StringVar(&name, "strategy", "threshold", "strategy: threshold|majority")
	return cmd
}

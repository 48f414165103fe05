package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Validator/internal/config"
	"github.com/Alias1177/Validator/internal/database"
	"github.com/Alias1177/Validator/internal/dataset"
	"github.com/Alias1177/Validator/internal/report"
	"github.com/Alias1177/Validator/internal/validation"
	"github.com/Alias1177/Validator/models"
)

// Execute wires the CLI and runs the selected command.
func Execute(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyLogLevel(cfg.LogLevel)

	root := &cobra.Command{Use: "validator", Short: "Trading strategy backtesting and validation"}
	root.AddCommand(historicalCmd(cfg))
	root.AddCommand(walkforwardCmd(cfg))
	root.AddCommand(compareCmd(cfg))
	return root.ExecuteContext(ctx)
}

func applyLogLevel(level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
}

// loadDataset reads records from a local CSV when one is configured, falling
// back to the remote dataset service otherwise.
func loadDataset(ctx context.Context, cfg *config.Config, csvPath, from, to string) (models.Dataset, error) {
	if csvPath == "" {
		csvPath = cfg.DatasetCSV
	}
	if csvPath != "" {
		return dataset.FromCSV(csvPath)
	}

	if cfg.DatasetURL == "" {
		return models.Dataset{}, fmt.Errorf("no dataset source: set --csv, DATASET_CSV or DATASET_URL")
	}
	start, err := parseDay(from)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("parsing --from: %w", err)
	}
	end, err := parseDay(to)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("parsing --to: %w", err)
	}

	client := dataset.NewClient(dataset.ClientOptions{
		APIKey:         cfg.DatasetAPIKey,
		BaseURL:        cfg.DatasetURL,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})
	return client.Load(ctx, cfg.Instrument, start, end)
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("required when loading from the dataset service")
	}
	return time.Parse("2006-01-02", s)
}

// buildStore assembles the run record sinks: the JSON file store always, the
// Postgres archive when enabled.
func buildStore(cfg *config.Config) (validation.RunStore, error) {
	stores := []validation.RunStore{report.NewFileStore(cfg.ResultsDir)}

	if cfg.DatabaseEnabled {
		db, err := database.New(database.ConnectionParams{
			Host:     cfg.DatabaseHost,
			Port:     cfg.DatabasePort,
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			DBName:   cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting run archive: %w", err)
		}
		stores = append(stores, db)
	}

	if len(stores) == 1 {
		return stores[0], nil
	}
	return multiStore(stores), nil
}

// multiStore fans one Save out to every sink.
type multiStore []validation.RunStore

func (m multiStore) Save(ctx context.Context, rec models.RunRecord) error {
	for _, s := range m {
		if err := s.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func newSplitter(cfg *config.Config) *validation.Splitter {
	return validation.NewSplitter(cfg.MinRecords, time.Duration(cfg.LookbackDays)*24*time.Hour)
}

func newOptions(cfg *config.Config) validation.Options {
	opts := validation.DefaultOptions()
	opts.PositiveLabel = cfg.PositiveLabel
	opts.Significance = cfg.Significance
	opts.Risk.RiskFreeRate = cfg.RiskFreeRate
	opts.Risk.PeriodsPerYear = float64(cfg.PeriodsPerYear)
	return opts
}

func logSummary(rec models.RunRecord) {
	ev := log.Info().
		Str("run_type", string(rec.RunType)).
		Str("status", string(rec.Status)).
		Str("instrument", rec.Instrument)
	if rec.Historical != nil {
		ev = ev.Float64("mean_f1", rec.Historical.MeanF1).
			Bool("degradation", rec.Historical.DegradationWarning)
	}
	if rec.WalkForward != nil {
		ev = ev.Float64("mean_f1", rec.WalkForward.MeanF1).
			Float64("consistency_rate", rec.WalkForward.ConsistencyRate)
	}
	if rec.Comparison != nil && len(rec.Comparison.Rankings) > 0 {
		ev = ev.Str("best", rec.Comparison.Rankings[0].Name)
	}
	ev.Msg("Run finished")
}

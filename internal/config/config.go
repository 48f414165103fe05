package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	Instrument       string
	DatasetURL       string
	DatasetAPIKey    string
	DatasetCSV       string
	PositiveLabel    string
	Frequency        string
	LookbackDays     int
	MinRecords       int
	MinCycles        int
	TargetF1         float64
	Significance     float64
	RiskFreeRate     float64
	PeriodsPerYear   int
	Workers          int
	Simulations      int
	ResultsDir       string
	LogLevel         string
	RequestTimeout   int // seconds
	RequestsPerSec   int
	MaxRetries       int
	DatabaseEnabled  bool
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.Instrument = getEnvWithDefault("INSTRUMENT", "EUR/USD")
	cfg.DatasetURL = os.Getenv("DATASET_URL")
	cfg.DatasetAPIKey = os.Getenv("DATASET_API_KEY")
	cfg.DatasetCSV = os.Getenv("DATASET_CSV")
	cfg.PositiveLabel = getEnvWithDefault("POSITIVE_LABEL", "breakout")
	cfg.Frequency = getEnvWithDefault("RETRAIN_FREQUENCY", "monthly")
	cfg.LookbackDays = getEnvIntWithDefault("LOOKBACK_DAYS", 365)
	cfg.MinRecords = getEnvIntWithDefault("MIN_RECORDS", 30)
	cfg.MinCycles = getEnvIntWithDefault("MIN_CYCLES", 36)
	cfg.TargetF1 = getEnvFloatWithDefault("TARGET_F1", 0.65)
	cfg.Significance = getEnvFloatWithDefault("SIGNIFICANCE", 0.05)
	cfg.RiskFreeRate = getEnvFloatWithDefault("RISK_FREE_RATE", 0)
	cfg.PeriodsPerYear = getEnvIntWithDefault("PERIODS_PER_YEAR", 252)
	cfg.Workers = getEnvIntWithDefault("WORKERS", 4)
	cfg.Simulations = getEnvIntWithDefault("MONTE_CARLO_SIMULATIONS", 1000)
	cfg.ResultsDir = getEnvWithDefault("RESULTS_DIR", "results")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 3)
	cfg.DatabaseEnabled = getEnvBoolWithDefault("DATABASE_ENABLED", false)
	cfg.DatabaseHost = getEnvWithDefault("DATABASE_HOST", "localhost")
	cfg.DatabasePort = getEnvWithDefault("DATABASE_PORT", "5432")
	cfg.DatabaseUser = getEnvWithDefault("DATABASE_USER", "postgres")
	cfg.DatabasePassword = os.Getenv("DATABASE_PASSWORD")
	cfg.DatabaseName = getEnvWithDefault("DATABASE_NAME", "validator")
	cfg.DatabaseSSLMode = getEnvWithDefault("DATABASE_SSLMODE", "disable")

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

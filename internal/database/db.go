package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"

	"github.com/Alias1177/Validator/models"
)

// DB archives validation run records in PostgreSQL alongside the JSON file
// store, so deployment tooling can query run history without touching files.
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New opens a connection, waits for the database to become reachable with
// exponential backoff, and ensures the schema exists.
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ping := func() error { return db.Ping() }
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(ping, policy); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS validation_runs (
			id SERIAL PRIMARY KEY,
			run_type TEXT NOT NULL,
			status TEXT NOT NULL,
			instrument TEXT,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			record JSONB NOT NULL
		)
	`)
	return err
}

// Save archives one run record.
func (db *DB) Save(ctx context.Context, rec models.RunRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO validation_runs (run_type, status, instrument, started_at, finished_at, record)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.RunType, rec.Status, rec.Instrument, rec.StartedAt, rec.FinishedAt, payload)
	if err != nil {
		return fmt.Errorf("inserting run record: %w", err)
	}
	return nil
}

// LatestRun returns the most recent record of the given type, or nil when no
// run has been archived yet.
func (db *DB) LatestRun(ctx context.Context, runType models.RunType) (*models.RunRecord, error) {
	var payload []byte
	err := db.QueryRowContext(ctx, `
		SELECT record
		FROM validation_runs
		WHERE run_type = $1
		ORDER BY started_at DESC
		LIMIT 1
	`, runType).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var rec models.RunRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decoding archived run record: %w", err)
	}
	return &rec, nil
}

// RunsSince returns records of the given type started at or after the cutoff,
// oldest first.
func (db *DB) RunsSince(ctx context.Context, runType models.RunType, cutoff time.Time) ([]models.RunRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT record
		FROM validation_runs
		WHERE run_type = $1 AND started_at >= $2
		ORDER BY started_at ASC
	`, runType, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.RunRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec models.RunRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decoding archived run record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

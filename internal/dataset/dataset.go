package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/Alias1177/Validator/models"
)

// ErrDataUnavailable is returned when an upstream dataset fetch fails. It is
// fatal to the run and surfaced immediately; the engine never retries it.
var ErrDataUnavailable = errors.New("dataset unavailable")

// Validate checks the dataset invariants: timestamps non-decreasing overall
// and strictly increasing per instrument (no duplicates).
func Validate(ds models.Dataset) error {
	lastPerInstrument := make(map[string]time.Time)
	var last time.Time

	for i, r := range ds.Records {
		if i > 0 && r.Timestamp.Before(last) {
			return fmt.Errorf("record %d: timestamp %s precedes %s", i, r.Timestamp.Format(time.RFC3339), last.Format(time.RFC3339))
		}
		last = r.Timestamp

		key := r.Instrument
		if prev, ok := lastPerInstrument[key]; ok && !r.Timestamp.After(prev) {
			return fmt.Errorf("record %d: duplicate timestamp %s for instrument %q", i, r.Timestamp.Format(time.RFC3339), key)
		}
		lastPerInstrument[key] = r.Timestamp
	}
	return nil
}

// Before returns the records with timestamp strictly before t. The returned
// dataset shares backing storage with ds; records are never mutated.
func Before(ds models.Dataset, t time.Time) models.Dataset {
	idx := sort.Search(len(ds.Records), func(i int) bool {
		return !ds.Records[i].Timestamp.Before(t)
	})
	return models.Dataset{Instrument: ds.Instrument, Records: ds.Records[:idx]}
}

// Range returns the records with timestamp in [start, end).
func Range(ds models.Dataset, start, end time.Time) models.Dataset {
	lo := sort.Search(len(ds.Records), func(i int) bool {
		return !ds.Records[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(ds.Records), func(i int) bool {
		return !ds.Records[i].Timestamp.Before(end)
	})
	return models.Dataset{Instrument: ds.Instrument, Records: ds.Records[lo:hi]}
}

// FromCSV loads a labeled time series from a CSV file with the columns
// timestamp,instrument,label,return[,feature...]. An empty return column
// means the outcome has not resolved yet.
func FromCSV(path string) (models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: reading header: %v", ErrDataUnavailable, err)
	}
	if len(header) < 4 {
		return models.Dataset{}, fmt.Errorf("%w: expected at least 4 columns, got %d", ErrDataUnavailable, len(header))
	}

	var ds models.Dataset
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Dataset{}, fmt.Errorf("%w: line %d: %v", ErrDataUnavailable, line, err)
		}
		line++

		rec, err := parseRow(row)
		if err != nil {
			return models.Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		ds.Records = append(ds.Records, rec)
	}

	if len(ds.Records) > 0 {
		ds.Instrument = ds.Records[0].Instrument
	}
	if err := Validate(ds); err != nil {
		return models.Dataset{}, err
	}
	return ds, nil
}

func parseRow(row []string) (models.Record, error) {
	if len(row) < 4 {
		return models.Record{}, fmt.Errorf("expected at least 4 fields, got %d", len(row))
	}

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		// Date-only rows are common in daily exports
		ts, err = time.Parse("2006-01-02", row[0])
		if err != nil {
			return models.Record{}, fmt.Errorf("parsing timestamp %q: %w", row[0], err)
		}
	}

	rec := models.Record{
		Timestamp:  ts.UTC(),
		Instrument: row[1],
		Label:      row[2],
	}

	if row[3] != "" {
		ret, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return models.Record{}, fmt.Errorf("parsing return %q: %w", row[3], err)
		}
		rec.Return = models.Float64(ret)
	}

	for _, field := range row[4:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return models.Record{}, fmt.Errorf("parsing feature %q: %w", field, err)
		}
		rec.Features = append(rec.Features, v)
	}
	return rec, nil
}

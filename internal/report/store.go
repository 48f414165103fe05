package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Validator/models"
)

// FileStore persists one JSON run record per run under a caller-chosen
// directory. This is the narrow interface report and notification
// collaborators consume.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store writing into dir, creating it on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Save writes the record as <run_type>_<timestamp>.json. The write goes
// through a temp file and rename so consumers never see a torn record.
func (s *FileStore) Save(ctx context.Context, rec models.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating results dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", rec.RunType, rec.StartedAt.UTC().Format("20060102T150405"))
	path := filepath.Join(s.Dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing run record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalizing run record: %w", err)
	}

	log.Debug().Str("path", path).Str("status", string(rec.Status)).Msg("Run record persisted")
	return nil
}

// Load reads a previously persisted run record.
func Load(path string) (models.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RunRecord{}, fmt.Errorf("reading run record: %w", err)
	}
	var rec models.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.RunRecord{}, fmt.Errorf("decoding run record %s: %w", path, err)
	}
	return rec, nil
}

// List returns the persisted record paths for a run type, newest last.
func (s *FileStore) List(runType models.RunType) ([]string, error) {
	pattern := filepath.Join(s.Dir, fmt.Sprintf("%s_*.json", runType))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing run records: %w", err)
	}
	return paths, nil
}

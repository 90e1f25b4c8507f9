// Package config persists the operator run profile as a small YAML record.
// Validation on load is all-or-nothing: a record with any field out of
// range is treated as corrupt and replaced wholesale by the default triple,
// never repaired per-field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/centrifuge-ctl/internal/logic"
)

// Store loads and saves the run profile.
type Store interface {
	// Load returns the persisted profile, or the default triple when the
	// record is missing or invalid. The error reports I/O problems only;
	// the returned config is always usable.
	Load() (logic.RunConfig, error)

	// Save writes the profile as a single atomic record.
	Save(logic.RunConfig) error
}

// record is the on-disk layout: three integers in fixed order.
type record struct {
	TargetTempC int `yaml:"target_temperature_c"`
	TargetRPM   int `yaml:"target_rpm"`
	DurationSec int `yaml:"run_duration_sec"`
}

// FileStore persists the run profile to a YAML file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path. The file need
// not exist yet; Load returns defaults until the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and validates the persisted profile. A missing file, an
// unparseable file, or any out-of-range field yields the default triple.
func (s *FileStore) Load() (logic.RunConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return logic.DefaultConfig(), nil
		}
		return logic.DefaultConfig(), fmt.Errorf("read config %s: %w", s.path, err)
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		// Corrupt record: fall back wholesale, don't surface an error.
		return logic.DefaultConfig(), nil
	}

	cfg := logic.RunConfig{
		TargetTempC: rec.TargetTempC,
		TargetRPM:   rec.TargetRPM,
		DurationSec: rec.DurationSec,
	}
	if !cfg.Valid() {
		return logic.DefaultConfig(), nil
	}
	return cfg, nil
}

// Save writes the profile. Write-then-rename so a power cut mid-write never
// leaves a torn record at the final path.
func (s *FileStore) Save(cfg logic.RunConfig) error {
	data, err := yaml.Marshal(record{
		TargetTempC: cfg.TargetTempC,
		TargetRPM:   cfg.TargetRPM,
		DurationSec: cfg.DurationSec,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

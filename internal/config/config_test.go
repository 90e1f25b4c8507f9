package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/centrifuge-ctl/internal/logic"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "profile.yaml"))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	s := NewFileStore(path)

	want := logic.RunConfig{TargetTempC: 42, TargetRPM: 25, DurationSec: 450}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A fresh store over the same path sees the same record.
	got, err = NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	s := NewFileStore(path)
	require.NoError(t, s.Save(logic.DefaultConfig()))

	// No temp file left behind after a successful save.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestLoadCorruptYAMLReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0644))

	cfg, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultConfig(), cfg)
}

// Any out-of-range field invalidates the whole record. Fields are never
// repaired individually.
func TestLoadInvalidRecordReturnsDefaultsWholesale(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"temp too low", "target_temperature_c: 25\ntarget_rpm: 15\nrun_duration_sec: 300\n"},
		{"temp too high", "target_temperature_c: 51\ntarget_rpm: 15\nrun_duration_sec: 300\n"},
		{"rpm zero", "target_temperature_c: 38\ntarget_rpm: 0\nrun_duration_sec: 300\n"},
		{"rpm too high", "target_temperature_c: 38\ntarget_rpm: 31\nrun_duration_sec: 300\n"},
		{"negative duration", "target_temperature_c: 38\ntarget_rpm: 15\nrun_duration_sec: -30\n"},
		{"duration too long", "target_temperature_c: 38\ntarget_rpm: 15\nrun_duration_sec: 630\n"},
		{"missing fields", "target_rpm: 15\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profile.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			cfg, err := NewFileStore(path).Load()
			require.NoError(t, err)
			assert.Equal(t, logic.DefaultConfig(), cfg,
				"one bad field must reject the whole record")
		})
	}
}

func TestLoadValidRecordAtBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	body := "target_temperature_c: 26\ntarget_rpm: 30\nrun_duration_sec: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, logic.RunConfig{TargetTempC: 26, TargetRPM: 30, DurationSec: 0}, cfg)
}

func TestSaveOverwritesPreviousRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	s := NewFileStore(path)

	require.NoError(t, s.Save(logic.RunConfig{TargetTempC: 30, TargetRPM: 10, DurationSec: 60}))
	require.NoError(t, s.Save(logic.RunConfig{TargetTempC: 44, TargetRPM: 22, DurationSec: 570}))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, logic.RunConfig{TargetTempC: 44, TargetRPM: 22, DurationSec: 570}, cfg)
}

func TestFakeStoreMatchesFileStoreValidation(t *testing.T) {
	f := NewFakeStore()

	cfg, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultConfig(), cfg, "empty store loads defaults")

	f.Record = logic.RunConfig{TargetTempC: 99, TargetRPM: 15, DurationSec: 300}
	f.HasRecord = true
	cfg, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultConfig(), cfg, "invalid record loads defaults")

	want := logic.RunConfig{TargetTempC: 40, TargetRPM: 20, DurationSec: 120}
	require.NoError(t, f.Save(want))
	cfg, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
	assert.Equal(t, []logic.RunConfig{want}, f.Saved)
}

package config

import "github.com/sweeney/centrifuge-ctl/internal/logic"

// FakeStore is an in-memory Store for tests. It applies the same
// all-or-nothing validation as FileStore.
type FakeStore struct {
	// Record is the stored profile. Zero value counts as "no record".
	Record logic.RunConfig

	// HasRecord reports whether a record has been stored.
	HasRecord bool

	// LoadError, if set, is returned by Load alongside defaults.
	LoadError error

	// SaveError, if set, is returned by Save.
	SaveError error

	// Loads and Saved track calls for assertions.
	Loads int
	Saved []logic.RunConfig
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Load returns the stored record, or defaults when absent or invalid.
func (f *FakeStore) Load() (logic.RunConfig, error) {
	f.Loads++
	if f.LoadError != nil {
		return logic.DefaultConfig(), f.LoadError
	}
	if !f.HasRecord || !f.Record.Valid() {
		return logic.DefaultConfig(), nil
	}
	return f.Record, nil
}

// Save records the profile.
func (f *FakeStore) Save(cfg logic.RunConfig) error {
	if f.SaveError != nil {
		return f.SaveError
	}
	f.Record = cfg
	f.HasRecord = true
	f.Saved = append(f.Saved, cfg)
	return nil
}

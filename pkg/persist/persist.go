// Package persist saves the settings partition of the store between runs.
//
// The partition is one named, versioned record:
//
//	{"state":{"settings":{...}},"version":1}
//
// Only the fields written by partition are stored; everything else in the
// store is rebuilt from defaults or from the remote backend on startup.
package persist

import (
	"fmt"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

const (
	// Name is the record name of the partition
	Name = "goodaideas-storage"
	// Version is the partition format written by this build
	Version = 1
)

type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// partitionState is the persisted subset of store.State
type partitionState struct {
	Settings *store.Settings `json:"settings,omitempty"`
}

func partition(settings store.Settings) partitionState {
	return partitionState{Settings: &settings}
}

// Persister implements store.Persister on a Storage
type Persister struct {
	storage Storage
	backend string
	log     *zap.Logger
}

// New creates a persister writing to storage. backend labels metrics.
func New(storage Storage, backend string, log *zap.Logger) *Persister {
	return &Persister{storage: storage, backend: backend, log: logger.OrNop(log)}
}

// Load returns the saved settings, or nil when there is no usable record.
// Malformed and newer-version records are ignored.
func (p *Persister) Load() (*store.Settings, error) {
	raw, ok, err := p.storage.GetItem(Name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Name, err)
	}
	if !ok {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		p.log.Warn("Ignoring malformed settings partition", zap.Error(err))
		return nil, nil
	}
	if env.Version > Version {
		p.log.Warn("Ignoring settings partition from a newer version",
			zap.Int("version", env.Version),
			zap.Int("supported", Version))
		return nil, nil
	}

	// decode over defaults so absent keys keep their default value
	settings := store.DefaultSettings()
	st := partitionState{Settings: &settings}
	if len(env.State) > 0 {
		if err := json.Unmarshal(env.State, &st); err != nil {
			p.log.Warn("Ignoring malformed settings partition", zap.Error(err))
			return nil, nil
		}
	}
	if st.Settings == nil {
		return nil, nil
	}

	normalized := st.Settings.Normalize()
	return &normalized, nil
}

// Save writes the partition for settings
func (p *Persister) Save(settings store.Settings) error {
	start := time.Now()

	state, err := json.Marshal(partition(settings))
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{State: state, Version: Version})
	if err != nil {
		return err
	}

	err = p.storage.SetItem(Name, string(data))
	metrics.ObservePersistWrite(p.backend, start, err)
	if err != nil {
		return fmt.Errorf("write %s: %w", Name, err)
	}
	return nil
}

// Clear removes the partition
func (p *Persister) Clear() error {
	return p.storage.RemoveItem(Name)
}

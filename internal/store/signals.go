package store

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/machinecinema/aisignals/internal/signal"
)

// SignalStore owns the raw signal snapshot.
type SignalStore struct {
	path   string
	logger *zap.Logger
}

// NewSignalStore returns a store rooted at path.
func NewSignalStore(path string, logger *zap.Logger) *SignalStore {
	return &SignalStore{path: path, logger: logger}
}

// Load reads the stored signals. A missing file is an empty store; a corrupt
// file is logged and treated as empty so a run can rebuild it.
func (s *SignalStore) Load() []signal.Signal {
	raw, found, err := readFile(s.path)
	if err != nil {
		s.logger.Warn("failed to load signal store", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	var signals []signal.Signal
	if err := json.Unmarshal(raw, &signals); err != nil {
		s.logger.Warn("signal store is not a signal array", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	return signals
}

// Save atomically replaces the snapshot.
func (s *SignalStore) Save(signals []signal.Signal) error {
	if signals == nil {
		signals = []signal.Signal{}
	}
	return writeJSONAtomic(s.path, signals)
}

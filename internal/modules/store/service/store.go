package service

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// MaxHistory caps the persisted signal history; the oldest entries are
// dropped first.
const MaxHistory = 500

// Store keeps the signal history as a single JSON array on disk. Every write
// replaces the file atomically (write to a temp file, then rename), so a
// reader can never observe a half-written history. Writes are serialized:
// a concurrent Append waits for the one in flight.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append adds one signal, trims the history to the newest MaxHistory
// entries, and persists the result.
func (s *Store) Append(sig models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		logger.Warn("signal store: starting with empty history: %v", err)
		history = nil
	}

	history = append(history, sig)
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	return s.persist(history)
}

// Recent returns up to count newest signals in chronological order,
// optionally filtered to one symbol. An empty store yields an empty slice.
func (s *Store) Recent(count int, symbol string) ([]models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		return nil, err
	}

	filtered := history
	if symbol != "" {
		filtered = nil
		for _, sig := range history {
			if sig.Symbol == symbol {
				filtered = append(filtered, sig)
			}
		}
	}

	if count < len(filtered) {
		filtered = filtered[len(filtered)-count:]
	}
	out := make([]models.Signal, len(filtered))
	copy(out, filtered)
	return out, nil
}

// Stats summarizes the stored history, optionally for one symbol.
func (s *Store) Stats(symbol string) (models.SignalStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		return models.SignalStats{}, err
	}

	var stats models.SignalStats
	for _, sig := range history {
		if symbol != "" && sig.Symbol != symbol {
			continue
		}
		switch sig.Side {
		case models.SideBuy:
			stats.TotalBuy++
		case models.SideSell:
			stats.TotalSell++
		}
		stats.HistoryCount++
		ts := sig.Timestamp
		if stats.LastSignalAt == nil || ts.After(*stats.LastSignalAt) {
			t := ts
			stats.LastSignalAt = &t
		}
	}
	return stats, nil
}

// EmittedSince counts stored signals newer than the cutoff, per side.
// Used by the daily summary.
func (s *Store) EmittedSince(cutoff time.Time, symbol string) (buy, sell int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		return 0, 0, err
	}
	for _, sig := range history {
		if symbol != "" && sig.Symbol != symbol {
			continue
		}
		if !sig.Timestamp.After(cutoff) {
			continue
		}
		switch sig.Side {
		case models.SideBuy:
			buy++
		case models.SideSell:
			sell++
		}
	}
	return buy, sell, nil
}

func (s *Store) load() ([]models.Signal, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read signal history")
	}
	var history []models.Signal
	if err := sonic.Unmarshal(data, &history); err != nil {
		return nil, errors.Wrap(err, "decode signal history")
	}
	return history, nil
}

func (s *Store) persist(history []models.Signal) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	data, err := sonic.MarshalIndent(history, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode signal history")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write signal history")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace signal history")
	}
	return nil
}

package service

import (
	"fmt"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// TimeframeChange reports the outcome of a timeframe switch.
type TimeframeChange struct {
	OK       bool   `json:"ok"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Timeframe returns the currently selected candle timeframe.
func (m *Monitor) Timeframe() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeframe
}

// ValidTimeframes lists the supported timeframes in ascending order.
func (m *Monitor) ValidTimeframes() []string {
	return models.ValidTimeframes()
}

// SetTimeframe switches the confirmation timeframe. Invalid values are
// rejected without touching state; a successful switch notifies the
// timeframe listeners.
func (m *Monitor) SetTimeframe(tf string) TimeframeChange {
	if !models.IsValidTimeframe(tf) {
		return TimeframeChange{
			OK:  false,
			Err: fmt.Sprintf("invalid timeframe %q, valid: %v", tf, models.ValidTimeframes()),
		}
	}

	m.mu.Lock()
	prev := m.timeframe
	m.timeframe = tf
	m.mu.Unlock()

	logger.Info("timeframe changed: %s -> %s", prev, tf)
	m.emitTimeframe(tf, prev)
	return TimeframeChange{OK: true, Previous: prev, Current: tf}
}

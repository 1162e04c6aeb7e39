package service

import (
	"fmt"
	"strings"
	"time"

	"signal_bot/pkg/logger"
)

// EmitDailySummary renders the 24h market overview and signal counts and
// delivers it to the summary listeners.
func (m *Monitor) EmitDailySummary() {
	text := m.renderDailySummary()
	logger.Info("daily summary emitted")
	m.emitSummary(text)
}

func (m *Monitor) renderDailySummary() string {
	var b strings.Builder
	b.WriteString("📊 Daily summary\n")

	m.mu.Lock()
	for _, symbol := range m.cfg.Monitor.Symbols {
		win := m.windows[symbol]
		if win == nil {
			fmt.Fprintf(&b, "%s: no data\n", symbol)
			continue
		}
		high, low, current, ok := win.highLow()
		if !ok {
			fmt.Fprintf(&b, "%s: no data\n", symbol)
			continue
		}
		fmt.Fprintf(&b, "%s: %s (H %s / L %s)\n",
			symbol, formatPrice(current), formatPrice(high), formatPrice(low))
	}
	m.mu.Unlock()

	cutoff := time.Now().Add(-24 * time.Hour)
	buy, sell, err := m.store.EmittedSince(cutoff, "")
	if err != nil {
		logger.Warn("summary signal counts: %v", err)
	} else {
		fmt.Fprintf(&b, "Signals (24h): %d (BUY %d / SELL %d)\n", buy+sell, buy, sell)
	}

	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	return b.String()
}

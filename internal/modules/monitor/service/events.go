package service

import (
	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

type (
	// SignalListener receives every emitted signal with its rendered text.
	SignalListener func(sig models.Signal, text string)
	// SummaryListener receives the rendered daily summary.
	SummaryListener func(text string)
	// TimeframeListener receives the new and previous timeframe on change.
	TimeframeListener func(current, previous string)
)

func (m *Monitor) OnSignal(fn SignalListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signalFns = append(m.signalFns, fn)
}

func (m *Monitor) OnDailySummary(fn SummaryListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaryFns = append(m.summaryFns, fn)
}

func (m *Monitor) OnTimeframeChange(fn TimeframeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeframeFns = append(m.timeframeFns, fn)
}

// Listeners run in registration order. A panicking listener is logged and
// skipped so the remaining ones still fire.
func (m *Monitor) emitSignal(sig models.Signal, text string) {
	m.mu.Lock()
	fns := make([]SignalListener, len(m.signalFns))
	copy(fns, m.signalFns)
	m.mu.Unlock()

	for _, fn := range fns {
		safeNotify("signal listener", func() { fn(sig, text) })
	}
}

func (m *Monitor) emitSummary(text string) {
	m.mu.Lock()
	fns := make([]SummaryListener, len(m.summaryFns))
	copy(fns, m.summaryFns)
	m.mu.Unlock()

	for _, fn := range fns {
		safeNotify("summary listener", func() { fn(text) })
	}
}

func (m *Monitor) emitTimeframe(current, previous string) {
	m.mu.Lock()
	fns := make([]TimeframeListener, len(m.timeframeFns))
	copy(fns, m.timeframeFns)
	m.mu.Unlock()

	for _, fn := range fns {
		safeNotify("timeframe listener", func() { fn(current, previous) })
	}
}

func safeNotify(label string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("%s panic: %v", label, r)
		}
	}()
	fn()
}

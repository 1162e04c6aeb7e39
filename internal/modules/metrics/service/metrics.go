package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's Prometheus instruments on a private registry.
// All record methods are safe on a nil receiver so wiring stays optional.
type Metrics struct {
	registry *prometheus.Registry

	signalsTotal     *prometheus.CounterVec
	fetchErrorsTotal *prometheus.CounterVec
	tradeErrorsTotal *prometheus.CounterVec
	storeErrorsTotal prometheus.Counter
	commandsTotal    *prometheus.CounterVec
	tickDuration     prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.signalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_signals_total",
		Help: "Signals emitted, by symbol and side.",
	}, []string{"symbol", "side"})

	m.fetchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_fetch_errors_total",
		Help: "Market data fetch failures after retries, by symbol.",
	}, []string{"symbol"})

	m.tradeErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_trade_errors_total",
		Help: "Auto-trade submissions that failed, by symbol.",
	}, []string{"symbol"})

	m.storeErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signal_bot_store_errors_total",
		Help: "Signal history persistence failures.",
	})

	m.commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_bot_commands_total",
		Help: "Chat commands handled, by command.",
	}, []string{"command"})

	m.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "signal_bot_tick_duration_seconds",
		Help:    "Duration of one full evaluation tick across all symbols.",
		Buckets: prometheus.DefBuckets,
	})

	m.registry.MustRegister(
		m.signalsTotal,
		m.fetchErrorsTotal,
		m.tradeErrorsTotal,
		m.storeErrorsTotal,
		m.commandsTotal,
		m.tickDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncSignal(symbol, side string) {
	if m == nil {
		return
	}
	m.signalsTotal.WithLabelValues(symbol, side).Inc()
}

func (m *Metrics) IncFetchError(symbol string) {
	if m == nil {
		return
	}
	m.fetchErrorsTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) IncTradeError(symbol string) {
	if m == nil {
		return
	}
	m.tradeErrorsTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) IncStoreError() {
	if m == nil {
		return
	}
	m.storeErrorsTotal.Inc()
}

func (m *Metrics) IncCommand(command string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(command).Inc()
}

func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}

package service

import (
	"context"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	metricsvc "signal_bot/internal/modules/metrics/service"
	"signal_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// MarketData is the market-data collaborator: quote and candle retrieval.
// Retry policy lives behind this interface, not in the monitor.
type MarketData interface {
	FetchPrice(ctx context.Context, symbol string) (models.PricePoint, error)
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}

// TradeExecutor submits market orders. The monitor issues at most one
// attempt per auto-trade decision.
type TradeExecutor interface {
	ExecuteTrade(ctx context.Context, side models.Side, symbol string, qty float64) (models.TradeResult, error)
}

// SignalStore is the durable signal history.
type SignalStore interface {
	Append(models.Signal) error
	Recent(count int, symbol string) ([]models.Signal, error)
	Stats(symbol string) (models.SignalStats, error)
	EmittedSince(cutoff time.Time, symbol string) (buy, sell int, err error)
}

// Monitor owns all mutable monitoring state: per-symbol price windows, the
// cooldown map, the selected timeframe and the listener lists. It drives
// periodic evaluation of every configured symbol plus a slower daily
// summary. Instances are independent, nothing is package-global.
type Monitor struct {
	cfg     *config.Config
	market  MarketData
	trader  TradeExecutor
	store   SignalStore
	metrics *metricsvc.Metrics
	health  *healthsvc.State

	mu        sync.Mutex
	windows   map[string]*priceWindow
	lastFired map[string]time.Time // symbol|side -> last emission
	evalLocks map[string]*sync.Mutex
	timeframe string

	signalFns    []SignalListener
	summaryFns   []SummaryListener
	timeframeFns []TimeframeListener

	running bool
	stopCh  chan struct{}
}

func NewMonitor(
	cfg *config.Config,
	market MarketData,
	trader TradeExecutor,
	store SignalStore,
	metrics *metricsvc.Metrics,
	health *healthsvc.State,
) *Monitor {
	return &Monitor{
		cfg:       cfg,
		market:    market,
		trader:    trader,
		store:     store,
		metrics:   metrics,
		health:    health,
		windows:   make(map[string]*priceWindow),
		lastFired: make(map[string]time.Time),
		evalLocks: make(map[string]*sync.Mutex),
		timeframe: cfg.Monitor.Timeframe,
	}
}

// Start arms the poll and summary timers. Calling Start on a running
// monitor is a no-op, timers are never doubled.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		logger.Warn("monitor already running")
		return
	}
	m.running = true
	stop := make(chan struct{})
	m.stopCh = stop
	m.mu.Unlock()

	logger.Info("monitor started (interval: %s, cooldown: %s, symbols: %d)",
		m.cfg.Monitor.PollInterval, m.cfg.Monitor.Cooldown, len(m.cfg.Monitor.Symbols))

	go m.pollLoop(ctx, stop)
	go m.summaryLoop(ctx, stop)
}

// Stop disarms both timers. An in-flight tick is allowed to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
	logger.Info("monitor stopped")
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) pollLoop(ctx context.Context, stop <-chan struct{}) {
	m.Tick(ctx)

	t := time.NewTicker(m.cfg.Monitor.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			m.Tick(ctx)
		}
	}
}

func (m *Monitor) summaryLoop(ctx context.Context, stop <-chan struct{}) {
	t := time.NewTicker(m.cfg.Monitor.SummaryInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			m.EmitDailySummary()
		}
	}
}

// Tick evaluates every configured symbol concurrently and returns once all
// evaluations have settled. One symbol failing, or even panicking, never
// affects the others.
func (m *Monitor) Tick(ctx context.Context) {
	span := opentracing.GlobalTracer().StartSpan("monitor.tick")
	defer span.Finish()

	start := time.Now()

	var wg sync.WaitGroup
	for _, symbol := range m.cfg.Monitor.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("evaluation panic for %s: %v", symbol, r)
				}
			}()
			m.evaluateSymbol(ctx, symbol)
		}(symbol)
	}
	wg.Wait()

	m.metrics.ObserveTick(time.Since(start))
	if m.health != nil {
		m.health.TouchTick(time.Now())
	}
}

// RecentSignals returns up to count newest stored signals, optionally for
// one symbol, oldest first.
func (m *Monitor) RecentSignals(count int, symbol string) ([]models.Signal, error) {
	return m.store.Recent(count, symbol)
}

// Stats summarizes the stored history.
func (m *Monitor) Stats(symbol string) (models.SignalStats, error) {
	return m.store.Stats(symbol)
}

// Symbols returns the configured watch list.
func (m *Monitor) Symbols() []string {
	out := make([]string, len(m.cfg.Monitor.Symbols))
	copy(out, m.cfg.Monitor.Symbols)
	return out
}

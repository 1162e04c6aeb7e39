package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	"signal_bot/pkg/logger"

	"github.com/google/uuid"
)

const confirmCandleLimit = 50

const (
	buyTargetMult  = 1.03
	buyStopMult    = 0.98
	sellTargetMult = 0.97
	sellStopMult   = 1.02
)

func (m *Monitor) evaluateSymbol(ctx context.Context, symbol string) {
	price, err := m.market.FetchPrice(ctx, symbol)
	if err != nil {
		m.metrics.IncFetchError(symbol)
		logger.Error("fetch price %s: %v", symbol, err)
		return
	}
	m.ObservePrice(ctx, price)
}

// ObservePrice pushes one observation into the symbol window and runs the
// full evaluation pipeline on it. Both the poll loop and the websocket feed
// funnel through here, so evaluations for one symbol run strictly one at a
// time: the cooldown write happens after the confirmation and trade calls,
// and a second evaluation must not read the cooldown map before then.
func (m *Monitor) ObservePrice(ctx context.Context, price models.PricePoint) {
	symbol := price.Symbol

	lock := m.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	win := m.windows[symbol]
	if win == nil {
		win = &priceWindow{}
		m.windows[symbol] = win
	}
	win.push(price)
	prices := win.lasts()
	tf := m.timeframe
	m.mu.Unlock()

	logger.Debug("%s: %.4f (%d samples)", symbol, price.Last, len(prices))

	res, ok := indicator.Score(prices)
	if !ok {
		return
	}

	key := cooldownKey(symbol, res.Side)
	m.mu.Lock()
	last, seen := m.lastFired[key]
	m.mu.Unlock()
	if seen && time.Since(last) < m.cfg.Monitor.Cooldown {
		logger.Info("cooldown active for %s %s, signal suppressed", symbol, res.Side)
		return
	}

	sig := m.buildSignal(symbol, price.Last, res)

	m.confirmHigherTimeframe(ctx, &sig, tf)
	m.maybeAutoTrade(ctx, &sig)

	m.mu.Lock()
	m.lastFired[key] = time.Now()
	m.mu.Unlock()

	if err := m.store.Append(sig); err != nil {
		m.metrics.IncStoreError()
		logger.Error("persist signal %s: %v", sig.ID, err)
	}

	m.metrics.IncSignal(symbol, string(sig.Side))
	if m.health != nil {
		m.health.TouchSignal(time.Now())
	}
	logger.Info("signal: %s %s @ %.4f strength=%d", sig.Side, symbol, sig.Price, sig.Strength)
	m.emitSignal(sig, FormatSignal(sig))
}

func (m *Monitor) buildSignal(symbol string, price float64, res indicator.Result) models.Signal {
	sig := models.Signal{
		ID:        uuid.NewString(),
		Side:      res.Side,
		Symbol:    symbol,
		Price:     price,
		RiskPct:   m.cfg.Monitor.RiskPct,
		Strength:  res.Strength,
		Reasons:   res.Reasons,
		Timestamp: time.Now().UTC(),
	}
	if res.Side == models.SideBuy {
		sig.Target = price * buyTargetMult
		sig.StopLoss = price * buyStopMult
	} else {
		sig.Target = price * sellTargetMult
		sig.StopLoss = price * sellStopMult
	}
	return sig
}

// confirmHigherTimeframe scores the paired higher timeframe and, on
// agreement, strengthens the signal. Any failure here leaves the signal as
// is; confirmation is a bonus, never a gate.
func (m *Monitor) confirmHigherTimeframe(ctx context.Context, sig *models.Signal, tf string) {
	confirmTF := models.ConfirmTimeframe(tf)
	candles, err := m.market.FetchCandles(ctx, sig.Symbol, confirmTF, confirmCandleLimit)
	if err != nil {
		logger.Warn("confirmation candles %s %s: %v", sig.Symbol, confirmTF, err)
		return
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	res, ok := indicator.Score(closes)
	if !ok {
		return
	}

	if res.Side == sig.Side {
		sig.Strength++
		sig.Reasons = append(sig.Reasons, fmt.Sprintf("%s timeframe agrees", confirmTF))
		return
	}
	logger.Info("%s: %s timeframe disagrees with %s, keeping primary signal", sig.Symbol, confirmTF, sig.Side)
}

// maybeAutoTrade places a single market order when the auto-trade gate
// passes. The outcome, success or failure, is recorded on the signal and
// never blocks persistence or notification.
func (m *Monitor) maybeAutoTrade(ctx context.Context, sig *models.Signal) {
	t := m.cfg.Trading
	if !t.AutoTrade || m.trader == nil {
		return
	}
	if sig.Strength < t.MinStrength {
		return
	}
	if len(t.Symbols) > 0 && !containsSymbol(t.Symbols, sig.Symbol) {
		return
	}

	qty := m.cfg.TradeQty(sig.Symbol)
	result, err := m.trader.ExecuteTrade(ctx, sig.Side, sig.Symbol, qty)
	if err != nil {
		sig.AutoTraded = false
		sig.TradeError = err.Error()
		m.metrics.IncTradeError(sig.Symbol)
		logger.Error("auto-trade %s %s failed: %v", sig.Side, sig.Symbol, err)
		return
	}

	sig.AutoTraded = true
	sig.TradeResult = &result
	logger.Info("auto-trade %s %s qty=%v order=%s", sig.Side, sig.Symbol, qty, result.OrderID)
}

func (m *Monitor) symbolLock(symbol string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.evalLocks[symbol]
	if l == nil {
		l = &sync.Mutex{}
		m.evalLocks[symbol] = l
	}
	return l
}

func cooldownKey(symbol string, side models.Side) string {
	return symbol + "|" + string(side)
}

func containsSymbol(list []string, symbol string) bool {
	for _, s := range list {
		if s == symbol {
			return true
		}
	}
	return false
}

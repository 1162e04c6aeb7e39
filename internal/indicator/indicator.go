// Package indicator holds the pure technical-indicator math used by the
// signal monitor. Functions operate on plain price slices and never touch
// I/O or shared state.
package indicator

import (
	"fmt"

	"signal_bot/internal/models"
)

const (
	DefaultRSIPeriod   = 14
	DefaultShortPeriod = 5
	DefaultLongPeriod  = 20

	// MinSamples is the minimum window length Score needs before it can
	// combine RSI, crossover and trend checks.
	MinSamples = 21

	// MinStrength is the lowest combined score that produces a signal.
	MinStrength = 2
)

type Crossover string

const (
	CrossNone   Crossover = ""
	CrossGolden Crossover = "golden"
	CrossDeath  Crossover = "death"
)

// Result is the outcome of one Score pass: a direction, how many rule
// points agree with it, and the human-readable reasons in evaluation order.
type Result struct {
	Side     models.Side
	Strength int
	Reasons  []string
}

// SMA returns the simple moving average of the trailing period values.
// ok is false when fewer than period values are supplied.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), true
}

// RSI returns the relative strength index over the trailing period
// transitions, in [0, 100]. ok is false when fewer than period+1 values are
// supplied. With no observed losses the result is exactly 100.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}

	recent := prices[len(prices)-(period+1):]
	var avgGain, avgLoss float64
	for i := 1; i < len(recent); i++ {
		change := recent[i] - recent[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// CrossoverSignal detects a golden or death cross of the short SMA against
// the long SMA between the previous and the current sample. Requires at
// least longPeriod+1 samples.
func CrossoverSignal(prices []float64, shortPeriod, longPeriod int) Crossover {
	if len(prices) < longPeriod+1 {
		return CrossNone
	}

	prev := prices[:len(prices)-1]
	currShort, ok1 := SMA(prices, shortPeriod)
	currLong, ok2 := SMA(prices, longPeriod)
	prevShort, ok3 := SMA(prev, shortPeriod)
	prevLong, ok4 := SMA(prev, longPeriod)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return CrossNone
	}

	if prevShort <= prevLong && currShort > currLong {
		return CrossGolden
	}
	if prevShort >= prevLong && currShort < currLong {
		return CrossDeath
	}
	return CrossNone
}

// Score combines RSI, SMA crossover and trend alignment into one directional
// signal. ok is false when fewer than MinSamples prices are supplied or when
// neither direction reaches MinStrength.
func Score(prices []float64) (Result, bool) {
	if len(prices) < MinSamples {
		return Result{}, false
	}

	current := prices[len(prices)-1]
	rsi, rsiOK := RSI(prices, DefaultRSIPeriod)
	smaShort, shortOK := SMA(prices, DefaultShortPeriod)
	smaLong, longOK := SMA(prices, DefaultLongPeriod)
	cross := CrossoverSignal(prices, DefaultShortPeriod, DefaultLongPeriod)

	var buyScore, sellScore int
	var reasons []string

	if rsiOK {
		switch {
		case rsi < 30:
			buyScore += 2
			reasons = append(reasons, fmt.Sprintf("RSI %.1f (oversold)", rsi))
		case rsi < 40:
			buyScore++
			reasons = append(reasons, fmt.Sprintf("RSI %.1f (low)", rsi))
		case rsi > 70:
			sellScore += 2
			reasons = append(reasons, fmt.Sprintf("RSI %.1f (overbought)", rsi))
		case rsi > 60:
			sellScore++
			reasons = append(reasons, fmt.Sprintf("RSI %.1f (high)", rsi))
		}
	}

	switch cross {
	case CrossGolden:
		buyScore += 3
		reasons = append(reasons, "SMA golden cross")
	case CrossDeath:
		sellScore += 3
		reasons = append(reasons, "SMA death cross")
	}

	if shortOK && longOK {
		if current > smaShort && smaShort > smaLong {
			buyScore++
			reasons = append(reasons, "uptrend (price > SMA5 > SMA20)")
		} else if current < smaShort && smaShort < smaLong {
			sellScore++
			reasons = append(reasons, "downtrend (price < SMA5 < SMA20)")
		}
	}

	if buyScore >= MinStrength && buyScore > sellScore {
		return Result{Side: models.SideBuy, Strength: buyScore, Reasons: reasons}, true
	}
	if sellScore >= MinStrength && sellScore > buyScore {
		return Result{Side: models.SideSell, Strength: sellScore, Reasons: reasons}, true
	}
	return Result{}, false
}

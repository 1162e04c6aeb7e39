package indicator

import (
	"math"
	"strings"
	"testing"

	"signal_bot/internal/models"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f", label, got, want)
	}
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ascending(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
		ok     bool
	}{
		{"exact window", []float64{1, 2, 3, 4, 5}, 5, 3, true},
		{"trailing window only", []float64{100, 200, 1, 2, 3, 4, 5}, 5, 3, true},
		{"too short", []float64{1, 2, 3}, 5, 0, false},
		{"single", []float64{42}, 1, 42, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SMA(tt.prices, tt.period)
			if ok != tt.ok {
				t.Fatalf("ok=%v, want %v", ok, tt.ok)
			}
			if ok {
				assertClose(t, "SMA", got, tt.want, 1e-9)
			}
		})
	}
}

func TestRSI_Extremes(t *testing.T) {
	up, ok := RSI(ascending(15, 100, 1), DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI for 15 ascending samples")
	}
	assertClose(t, "all-ascending RSI", up, 100, 1e-9)

	down, ok := RSI(ascending(15, 100, -1), DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI for 15 descending samples")
	}
	assertClose(t, "all-descending RSI", down, 0, 1e-9)
}

func TestRSI_TooShort(t *testing.T) {
	if _, ok := RSI(ascending(14, 100, 1), DefaultRSIPeriod); ok {
		t.Error("RSI must need period+1 samples")
	}
}

func TestRSI_Mixed(t *testing.T) {
	// 7 gains of 2 and 7 losses of 1 over 14 transitions:
	// avgGain=1, avgLoss=0.5, rs=2, rsi = 100-100/3 = 66.666...
	prices := []float64{100}
	for i := 0; i < 7; i++ {
		prices = append(prices, prices[len(prices)-1]+2)
		prices = append(prices, prices[len(prices)-1]-1)
	}
	got, ok := RSI(prices, DefaultRSIPeriod)
	if !ok {
		t.Fatal("expected RSI")
	}
	assertClose(t, "mixed RSI", got, 100-100.0/3, 1e-6)
}

func TestCrossoverSignal(t *testing.T) {
	spike := append(flat(24, 100), 110)
	if got := CrossoverSignal(spike, DefaultShortPeriod, DefaultLongPeriod); got != CrossGolden {
		t.Errorf("upward spike after flat: got %q, want golden", got)
	}

	drop := append(flat(24, 100), 90)
	if got := CrossoverSignal(drop, DefaultShortPeriod, DefaultLongPeriod); got != CrossDeath {
		t.Errorf("downward drop after flat: got %q, want death", got)
	}

	if got := CrossoverSignal(flat(25, 100), DefaultShortPeriod, DefaultLongPeriod); got != CrossNone {
		t.Errorf("flat series: got %q, want none", got)
	}

	if got := CrossoverSignal(flat(20, 100), DefaultShortPeriod, DefaultLongPeriod); got != CrossNone {
		t.Errorf("short series: got %q, want none", got)
	}
}

func TestScore_TooShort(t *testing.T) {
	for n := 0; n < MinSamples; n++ {
		if _, ok := Score(ascending(n, 100, -5)); ok {
			t.Fatalf("Score with %d samples must not signal", n)
		}
	}
}

func TestScore_DeathCrossSell(t *testing.T) {
	// Flat series with one sharp drop: death cross (+3 sell), downtrend
	// (+1 sell), RSI 0 (+2 buy). Sell must win.
	prices := append(flat(24, 100), 80)
	res, ok := Score(prices)
	if !ok {
		t.Fatal("expected a signal")
	}
	if res.Side != models.SideSell {
		t.Fatalf("side=%s, want SELL", res.Side)
	}
	if res.Strength < 3 {
		t.Errorf("strength=%d, want >= 3", res.Strength)
	}
	joined := strings.Join(res.Reasons, "; ")
	if !strings.Contains(joined, "death cross") {
		t.Errorf("reasons missing death cross: %v", res.Reasons)
	}
}

func TestScore_OverboughtSell(t *testing.T) {
	res, ok := Score(ascending(25, 100, 1))
	if !ok {
		t.Fatal("expected a signal")
	}
	if res.Side != models.SideSell {
		t.Fatalf("side=%s, want SELL", res.Side)
	}
	joined := strings.Join(res.Reasons, "; ")
	if !strings.Contains(joined, "overbought") {
		t.Errorf("reasons missing overbought: %v", res.Reasons)
	}
}

func TestScore_GoldenCrossBuy(t *testing.T) {
	prices := append(flat(24, 100), 110)
	res, ok := Score(prices)
	if !ok {
		t.Fatal("expected a signal")
	}
	if res.Side != models.SideBuy {
		t.Fatalf("side=%s, want BUY", res.Side)
	}
	// golden cross +3, uptrend +1, RSI 100 overbought +2 sell
	if res.Strength < 3 {
		t.Errorf("strength=%d, want >= 3", res.Strength)
	}
	joined := strings.Join(res.Reasons, "; ")
	if !strings.Contains(joined, "golden cross") {
		t.Errorf("reasons missing golden cross: %v", res.Reasons)
	}
}

func TestScore_NeutralNoSignal(t *testing.T) {
	// Balanced gains and losses: RSI 50, no crossover, no trend alignment.
	prices := append(flat(16, 100), 100.5, 99.5, 100.2, 99.8, 100.0)
	if res, ok := Score(prices); ok {
		t.Errorf("neutral series must not signal, got %s strength=%d %v",
			res.Side, res.Strength, res.Reasons)
	}
}

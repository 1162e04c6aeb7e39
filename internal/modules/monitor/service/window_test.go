package service

import (
	"testing"
	"time"

	"signal_bot/internal/models"
)

func TestPriceWindow_CapEvictsOldest(t *testing.T) {
	w := &priceWindow{}
	for i := 0; i < 120; i++ {
		w.push(models.PricePoint{Symbol: "BTC/USDT", Last: float64(i), Timestamp: time.Now()})
		if len(w.points) > windowCap {
			t.Fatalf("window grew to %d after %d pushes, cap is %d", len(w.points), i+1, windowCap)
		}
	}

	if len(w.points) != windowCap {
		t.Fatalf("len = %d, want %d", len(w.points), windowCap)
	}

	lasts := w.lasts()
	if lasts[0] != 20 {
		t.Errorf("oldest retained = %v, want 20 (first 20 evicted)", lasts[0])
	}
	if lasts[len(lasts)-1] != 119 {
		t.Errorf("newest = %v, want 119", lasts[len(lasts)-1])
	}
	for i := 1; i < len(lasts); i++ {
		if lasts[i] != lasts[i-1]+1 {
			t.Fatalf("order broken at %d: %v then %v", i, lasts[i-1], lasts[i])
		}
	}
}

func TestPriceWindow_HighLow(t *testing.T) {
	w := &priceWindow{}
	if _, _, _, ok := w.highLow(); ok {
		t.Fatal("empty window reported data")
	}

	for _, v := range []float64{100, 140, 90, 120} {
		w.push(models.PricePoint{Last: v})
	}
	high, low, current, ok := w.highLow()
	if !ok {
		t.Fatal("window with data reported none")
	}
	if high != 140 || low != 90 || current != 120 {
		t.Fatalf("high/low/current = %v/%v/%v, want 140/90/120", high, low, current)
	}
}

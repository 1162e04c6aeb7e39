package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"signal_bot/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "signals.json"))
}

func testSignal(symbol string, side models.Side, ts time.Time) models.Signal {
	return models.Signal{
		ID:        fmt.Sprintf("%s-%s-%d", symbol, side, ts.UnixNano()),
		Side:      side,
		Symbol:    symbol,
		Price:     100,
		Target:    103,
		StopLoss:  98,
		RiskPct:   1,
		Strength:  3,
		Reasons:   []string{"test"},
		Timestamp: ts,
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 7; i++ {
		sym := "BTC/USDT"
		if i%2 == 1 {
			sym = "ETH/USDT"
		}
		if err := s.Append(testSignal(sym, models.SideBuy, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := s.Recent(100, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 7 {
		t.Fatalf("len=%d, want 7", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.Before(all[i-1].Timestamp) {
			t.Error("recent must be chronological")
		}
	}

	eth, err := s.Recent(2, "ETH/USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(eth) != 2 {
		t.Fatalf("len=%d, want 2", len(eth))
	}
	for _, sig := range eth {
		if sig.Symbol != "ETH/USDT" {
			t.Errorf("unexpected symbol %s", sig.Symbol)
		}
	}
}

func TestStore_RecentEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Recent(5, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("len=%d, want 0", len(got))
	}
}

func TestStore_Retention(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-24 * time.Hour)

	for i := 0; i < MaxHistory+1; i++ {
		sig := testSignal("BTC/USDT", models.SideBuy, base.Add(time.Duration(i)*time.Second))
		sig.ID = fmt.Sprintf("sig-%04d", i)
		if err := s.Append(sig); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := s.Recent(MaxHistory+10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != MaxHistory {
		t.Fatalf("len=%d, want %d", len(all), MaxHistory)
	}
	// The single oldest entry is gone, order preserved.
	if all[0].ID != "sig-0001" {
		t.Errorf("oldest=%s, want sig-0001", all[0].ID)
	}
	if all[len(all)-1].ID != fmt.Sprintf("sig-%04d", MaxHistory) {
		t.Errorf("newest=%s", all[len(all)-1].ID)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	_ = s.Append(testSignal("BTC/USDT", models.SideBuy, base))
	_ = s.Append(testSignal("BTC/USDT", models.SideSell, base.Add(time.Minute)))
	_ = s.Append(testSignal("ETH/USDT", models.SideBuy, base.Add(2*time.Minute)))

	stats, err := s.Stats("")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalBuy != 2 || stats.TotalSell != 1 || stats.HistoryCount != 3 {
		t.Errorf("stats=%+v", stats)
	}
	if stats.LastSignalAt == nil {
		t.Fatal("LastSignalAt missing")
	}

	btc, err := s.Stats("BTC/USDT")
	if err != nil {
		t.Fatal(err)
	}
	if btc.TotalBuy != 1 || btc.TotalSell != 1 || btc.HistoryCount != 2 {
		t.Errorf("btc stats=%+v", btc)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := newTestStore(t)
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(testSignal("BTC/USDT", models.SideBuy, base.Add(time.Duration(i)*time.Millisecond)))
		}(i)
	}
	wg.Wait()

	all, err := s.Recent(100, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 20 {
		t.Fatalf("len=%d, want 20 (lost writes)", len(all))
	}
}

func TestStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.json")
	s := NewStore(path)

	if err := s.Append(testSignal("BTC/USDT", models.SideBuy, time.Now())); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("history file missing: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind")
	}
}

func TestStore_EmittedSince(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	_ = s.Append(testSignal("BTC/USDT", models.SideBuy, now.Add(-48*time.Hour)))
	_ = s.Append(testSignal("BTC/USDT", models.SideSell, now.Add(-time.Hour)))
	_ = s.Append(testSignal("BTC/USDT", models.SideBuy, now.Add(-time.Minute)))

	buy, sell, err := s.EmittedSince(now.Add(-24*time.Hour), "")
	if err != nil {
		t.Fatal(err)
	}
	if buy != 1 || sell != 1 {
		t.Errorf("buy=%d sell=%d, want 1/1", buy, sell)
	}
}

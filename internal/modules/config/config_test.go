package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv(configFilePathENV, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Monitor.PollInterval != 60*time.Second {
		t.Errorf("poll_interval=%v", cfg.Monitor.PollInterval)
	}
	if cfg.Monitor.Cooldown != 5*time.Minute {
		t.Errorf("cooldown=%v", cfg.Monitor.Cooldown)
	}
	if cfg.Monitor.Timeframe != "1m" {
		t.Errorf("timeframe=%q", cfg.Monitor.Timeframe)
	}
	if len(cfg.Monitor.Symbols) != 1 || cfg.Monitor.Symbols[0] != "BTC/USDT" {
		t.Errorf("symbols=%v", cfg.Monitor.Symbols)
	}
	if cfg.Trading.AutoTrade {
		t.Error("auto_trade must default to off")
	}
	if cfg.Store.FilePath == "" {
		t.Error("store.file_path default missing")
	}
}

func TestNewConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.yaml")
	body := `
monitor:
  symbols: ["ETH/USDT", "BTC/JPY"]
  poll_interval: 5s
  cooldown: 0s
  timeframe: 15m
trading:
  auto_trade: true
  min_strength: 4
  default_qty: 0.01
  quantities:
    ETH/USDT: 0.5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configFilePathENV, path)

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if len(cfg.Monitor.Symbols) != 2 {
		t.Errorf("symbols=%v", cfg.Monitor.Symbols)
	}
	if cfg.Monitor.Timeframe != "15m" {
		t.Errorf("timeframe=%q", cfg.Monitor.Timeframe)
	}
	if got := cfg.TradeQty("ETH/USDT"); got != 0.5 {
		t.Errorf("TradeQty(ETH/USDT)=%v", got)
	}
	if got := cfg.TradeQty("BTC/JPY"); got != 0.01 {
		t.Errorf("TradeQty(BTC/JPY)=%v, want default", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Monitor: MonitorConfig{
				Symbols:         []string{"BTC/USDT"},
				PollInterval:    time.Minute,
				Cooldown:        time.Minute,
				SummaryInterval: 24 * time.Hour,
				Timeframe:       "1m",
				RiskPct:         1,
			},
			Trading: TradingConfig{MinStrength: 4, DefaultQty: 0.001},
			Store:   StoreConfig{FilePath: "data/signals.json"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"valid", func(c *Config) {}, true},
		{"no symbols", func(c *Config) { c.Monitor.Symbols = nil }, false},
		{"bad pair", func(c *Config) { c.Monitor.Symbols = []string{"BTCUSDT"} }, false},
		{"bad timeframe", func(c *Config) { c.Monitor.Timeframe = "2m" }, false},
		{"zero poll", func(c *Config) { c.Monitor.PollInterval = 0 }, false},
		{"negative cooldown", func(c *Config) { c.Monitor.Cooldown = -time.Second }, false},
		{"auto-trade weak strength", func(c *Config) {
			c.Trading.AutoTrade = true
			c.Trading.MinStrength = 1
		}, false},
		{"no store path", func(c *Config) { c.Store.FilePath = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

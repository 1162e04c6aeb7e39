package config

import (
	"os"
	"strings"
	"time"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const configFilePathENV = "CONFIG_FILE"

type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Trading  TradingConfig  `mapstructure:"trading"`
	Store    StoreConfig    `mapstructure:"store"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServiceConfig struct {
	Name      string `mapstructure:"name"`
	AdminAddr string `mapstructure:"admin_addr"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type ExchangeConfig struct {
	RestURL      string        `mapstructure:"rest_url"`
	WSURL        string        `mapstructure:"ws_url"`
	APIKey       string        `mapstructure:"api_key"`
	APISecret    string        `mapstructure:"api_secret"`
	Passphrase   string        `mapstructure:"passphrase"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UseWebsocket bool          `mapstructure:"use_websocket"`
}

type MonitorConfig struct {
	Symbols         []string      `mapstructure:"symbols"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
	SummaryInterval time.Duration `mapstructure:"summary_interval"`
	Timeframe       string        `mapstructure:"timeframe"`
	RiskPct         float64       `mapstructure:"risk_pct"`
}

// TradingConfig controls the auto-trade gate. An empty symbol allow-list
// means every monitored symbol qualifies.
type TradingConfig struct {
	AutoTrade   bool               `mapstructure:"auto_trade"`
	MinStrength int                `mapstructure:"min_strength"`
	Symbols     []string           `mapstructure:"symbols"`
	DefaultQty  float64            `mapstructure:"default_qty"`
	Quantities  map[string]float64 `mapstructure:"quantities"`
}

type StoreConfig struct {
	FilePath string `mapstructure:"file_path"`
}

type TelegramConfig struct {
	Token      string        `mapstructure:"token"`
	ChatID     int64         `mapstructure:"chat_id"`
	RateWindow time.Duration `mapstructure:"rate_window"`
	RateMax    int           `mapstructure:"rate_max"`
}

type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

func NewConfig() (*Config, error) {
	v := viper.New()

	path := os.Getenv(configFilePathENV)
	if path == "" {
		path = "configs/values_local.yaml"
	}
	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("SIGNAL_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The defaults plus environment overrides are a complete
		// configuration; only a malformed file is fatal.
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "signal-bot")
	v.SetDefault("service.admin_addr", ":8080")

	v.SetDefault("logging.level", "info")

	v.SetDefault("exchange.rest_url", "https://www.okx.com")
	v.SetDefault("exchange.ws_url", "wss://ws.okx.com:8443/ws/v5/public")
	v.SetDefault("exchange.timeout", "10s")
	v.SetDefault("exchange.use_websocket", false)

	v.SetDefault("monitor.symbols", []string{"BTC/USDT"})
	v.SetDefault("monitor.poll_interval", "60s")
	v.SetDefault("monitor.cooldown", "5m")
	v.SetDefault("monitor.summary_interval", "24h")
	v.SetDefault("monitor.timeframe", "1m")
	v.SetDefault("monitor.risk_pct", 1.0)

	v.SetDefault("trading.auto_trade", false)
	v.SetDefault("trading.min_strength", 4)
	v.SetDefault("trading.default_qty", 0.001)

	v.SetDefault("store.file_path", "data/signals.json")

	v.SetDefault("telegram.rate_window", "60s")
	v.SetDefault("telegram.rate_max", 10)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)
}

func (c *Config) Validate() error {
	if len(c.Monitor.Symbols) == 0 {
		return errors.New("monitor.symbols must contain at least one pair")
	}
	for _, sym := range c.Monitor.Symbols {
		if !strings.Contains(sym, "/") {
			return errors.Errorf("monitor.symbols: %q is not a BASE/QUOTE pair", sym)
		}
	}
	if c.Monitor.PollInterval <= 0 {
		return errors.New("monitor.poll_interval must be positive")
	}
	if c.Monitor.Cooldown < 0 {
		return errors.New("monitor.cooldown must not be negative")
	}
	if c.Monitor.SummaryInterval <= 0 {
		return errors.New("monitor.summary_interval must be positive")
	}
	if !models.IsValidTimeframe(c.Monitor.Timeframe) {
		return errors.Errorf("monitor.timeframe: %q is not one of %v",
			c.Monitor.Timeframe, models.ValidTimeframes())
	}
	if c.Monitor.RiskPct < 0 {
		return errors.New("monitor.risk_pct must not be negative")
	}
	if c.Trading.AutoTrade {
		if c.Trading.MinStrength < 2 {
			return errors.New("trading.min_strength must be at least 2")
		}
		if c.Trading.DefaultQty <= 0 {
			return errors.New("trading.default_qty must be positive")
		}
	}
	if c.Store.FilePath == "" {
		return errors.New("store.file_path is required")
	}
	return nil
}

// TradeQty returns the configured order size for a symbol, falling back to
// the default quantity.
func (c *Config) TradeQty(symbol string) float64 {
	if qty, ok := c.Trading.Quantities[symbol]; ok && qty > 0 {
		return qty
	}
	return c.Trading.DefaultQty
}

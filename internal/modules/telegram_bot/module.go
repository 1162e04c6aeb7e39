package telegram

import (
	"context"
	"fmt"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	exchangesvc "signal_bot/internal/modules/exchange/service"
	metricsvc "signal_bot/internal/modules/metrics/service"
	monitorsvc "signal_bot/internal/modules/monitor/service"
	"signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(newTelegram),
		fx.Invoke(run),
	)
}

// newTelegram returns nil when no token is configured; the bot is simply
// absent and signals only reach the log.
func newTelegram(cfg *config.Config, monitor *monitorsvc.Monitor, client *exchangesvc.Client, metrics *metricsvc.Metrics) (*service.Telegram, error) {
	if cfg.Telegram.Token == "" {
		logger.Info("telegram token not set, chat interface disabled")
		return nil, nil
	}
	return service.NewTelegram(cfg, monitor, client, metrics)
}

func run(lc fx.Lifecycle, t *service.Telegram, monitor *monitorsvc.Monitor) {
	if t == nil {
		return
	}

	monitor.OnSignal(func(_ models.Signal, text string) { t.Notify(text) })
	monitor.OnDailySummary(func(text string) { t.Notify(text) })
	monitor.OnTimeframeChange(func(current, previous string) {
		t.Notify(fmt.Sprintf("Timeframe changed: %s -> %s", previous, current))
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			t.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			t.Stop()
			return nil
		},
	})
}

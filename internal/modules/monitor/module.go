package monitor

import (
	"context"

	"signal_bot/internal/modules/config"
	exchangesvc "signal_bot/internal/modules/exchange/service"
	healthsvc "signal_bot/internal/modules/health/service"
	metricsvc "signal_bot/internal/modules/metrics/service"
	"signal_bot/internal/modules/monitor/service"
	storesvc "signal_bot/internal/modules/store/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("monitor",
		fx.Provide(newMonitor),
		fx.Invoke(run),
	)
}

func newMonitor(
	cfg *config.Config,
	client *exchangesvc.Client,
	store *storesvc.Store,
	metrics *metricsvc.Metrics,
	health *healthsvc.State,
) *service.Monitor {
	return service.NewMonitor(cfg, client, client, store, metrics, health)
}

func run(lc fx.Lifecycle, cfg *config.Config, m *service.Monitor, client *exchangesvc.Client, health *healthsvc.State) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			m.Start(ctx)
			if cfg.Exchange.UseWebsocket {
				go func() {
					health.SetWSConnected(true)
					defer health.SetWSConnected(false)
					for p := range client.StreamTicker(ctx, cfg.Monitor.Symbols) {
						m.ObservePrice(ctx, p)
					}
				}()
			}
			return nil
		},
		OnStop: func(context.Context) error {
			m.Stop()
			cancel()
			return nil
		},
	})
}

package main

import (
	"context"
	"log"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/exchange"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/metrics"
	"signal_bot/internal/modules/monitor"
	"signal_bot/internal/modules/store"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module(),
		fx.Invoke(setupObservability),
		health.Module(),
		metrics.Module(),
		store.Module(),
		exchange.Module(),
		monitor.Module(),
		telegram.Module(),
	)
	app.Run()
}

func setupObservability(lc fx.Lifecycle, cfg *config.Config) error {
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Printf("logger init: %v", err)
		return err
	}
	logger.SetServiceName(cfg.Service.Name)

	if !cfg.Tracing.Enabled {
		return nil
	}
	tracing.SetServiceName(cfg.Service.Name)
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}

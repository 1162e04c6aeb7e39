package store

import (
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/store/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			func(cfg *config.Config) *service.Store {
				return service.NewStore(cfg.Store.FilePath)
			},
		),
	)
}

package metrics

import (
	"net/http"

	"signal_bot/internal/modules/metrics/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(service.NewMetrics),
		fx.Invoke(register),
	)
}

// register exposes the bot registry on the shared admin mux.
func register(mux *http.ServeMux, m *service.Metrics) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
}

package metrics

import (
	"github.com/tuanemuy/kissa/internal/config"
	"go.uber.org/fx"
)

func provideConfig(cfg config.Config) Config {
	return Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.OTLPProtocol,
		ServiceName:      cfg.AppName,
	}
}

// Module wires the meter provider and domain instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(
		provideConfig,
		NewProvider,
		New,
	),
)

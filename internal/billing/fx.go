package billing

import (
	"github.com/tuanemuy/kissa/internal/billing/repository"
	"github.com/tuanemuy/kissa/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

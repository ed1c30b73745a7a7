package subscription

import (
	"github.com/tuanemuy/kissa/internal/subscription/repository"
	"github.com/tuanemuy/kissa/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

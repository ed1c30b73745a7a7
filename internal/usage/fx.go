package usage

import (
	"github.com/tuanemuy/kissa/internal/usage/repository"
	"github.com/tuanemuy/kissa/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)

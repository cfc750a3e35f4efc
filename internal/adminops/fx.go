package adminops

import (
	"go.uber.org/fx"

	"github.com/tbilisoft/declara/internal/adminops/repository"
	"github.com/tbilisoft/declara/internal/adminops/service"
)

var Module = fx.Module("adminops.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

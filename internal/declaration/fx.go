package declaration

import (
	"github.com/tbilisoft/declara/internal/declaration/repository"
	"github.com/tbilisoft/declara/internal/declaration/service"
	"go.uber.org/fx"
)

var Module = fx.Module("declaration.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

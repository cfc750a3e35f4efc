package taxstats

import (
	"go.uber.org/fx"

	"github.com/tbilisoft/declara/internal/taxstats/service"
)

var Module = fx.Module("taxstats.service",
	fx.Provide(service.New),
)

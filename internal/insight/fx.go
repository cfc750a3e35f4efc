package insight

import (
	"go.uber.org/fx"

	"github.com/tbilisoft/declara/internal/insight/service"
)

var Module = fx.Module("insight.service",
	fx.Provide(service.New),
)

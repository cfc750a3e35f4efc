package ledger

import (
	"github.com/tbilisoft/declara/internal/ledger/repository"
	"github.com/tbilisoft/declara/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

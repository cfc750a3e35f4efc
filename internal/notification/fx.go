package notification

import (
	"go.uber.org/fx"

	"github.com/tbilisoft/declara/internal/notification/sender"
)

var Module = fx.Module("notification",
	fx.Provide(sender.NewLog),
)

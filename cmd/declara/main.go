package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/tbilisoft/declara/internal/adminops"
	"github.com/tbilisoft/declara/internal/clock"
	"github.com/tbilisoft/declara/internal/config"
	"github.com/tbilisoft/declara/internal/declaration"
	"github.com/tbilisoft/declara/internal/insight"
	"github.com/tbilisoft/declara/internal/ledger"
	"github.com/tbilisoft/declara/internal/migration"
	"github.com/tbilisoft/declara/internal/notification"
	"github.com/tbilisoft/declara/internal/observability"
	"github.com/tbilisoft/declara/internal/scheduler"
	"github.com/tbilisoft/declara/internal/server"
	"github.com/tbilisoft/declara/internal/taxstats"
	"github.com/tbilisoft/declara/internal/user"
	"github.com/tbilisoft/declara/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		user.Module,
		ledger.Module,
		declaration.Module,
		taxstats.Module,
		insight.Module,
		adminops.Module,
		notification.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tbilisoft/declara/internal/config"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
	userdomain "github.com/tbilisoft/declara/internal/user/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		// sqlite and mysql deployments derive the schema from the models.
		return AutoMigrate(conn)
	}),
)

// AutoMigrate creates the schema from the gorm models. Tests and the
// non-postgres dialects use this path.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&userdomain.User{},
		&ledgerdomain.IncomeRecord{},
		&declarationdomain.Declaration{},
	)
}

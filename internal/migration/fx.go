package migration

import (
	"context"

	"github.com/smallbiznis/atelier/internal/config"
	"github.com/smallbiznis/atelier/internal/idgen"
	"github.com/smallbiznis/atelier/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID idgen.Generator, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			log.Info("schema migration disabled")
			return nil
		}

		if err := Run(conn); err != nil {
			return err
		}

		summary, err := seed.EnsureReferenceData(context.Background(), conn, genID)
		if err != nil {
			return err
		}
		log.Info("reference data ensured",
			zap.Int("roles_created", summary.Roles),
			zap.Int("styles_created", summary.Styles),
			zap.Int("cities_created", summary.Cities),
		)
		return nil
	}),
)

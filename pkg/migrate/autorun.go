package migrate

import (
	"context"
	"fmt"

	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/db"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on boot, but only in dev with
// VENDORRS_AUTO_MIGRATE set. Other environments migrate through cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if client == nil {
		return fmt.Errorf("auto migrate: database client is required")
	}
	if cfg.DB.Driver == "sqlite" {
		logg.Warn(ctx, "auto migrate skipped for sqlite driver")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("auto migrate: sql handle: %w", err)
	}
	ctx = logg.WithField(ctx, "migrations_dir", DefaultDir)
	logg.Info(ctx, "applying pending migrations")
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logg.Info(ctx, "migrations applied")
	return nil
}

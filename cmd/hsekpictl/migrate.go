package main

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/hsekpi/internal/config"
	"github.com/smallbiznis/hsekpi/internal/migration"
	"github.com/smallbiznis/hsekpi/internal/observability"
	"github.com/smallbiznis/hsekpi/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg  config.Config
			conn *gorm.DB
		)
		app := fx.New(
			fx.NopLogger,
			config.Module,
			observability.Module,
			db.Module,
			fx.Populate(&cfg, &conn),
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer app.Stop(context.Background())

		if cfg.DBType != "postgres" {
			return fmt.Errorf("migrations target postgres, got %s", cfg.DBType)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := migration.RunMigrations(sqlDB); err != nil {
			return err
		}

		version, dirty, err := migration.Version(sqlDB)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)
		return nil
	},
}

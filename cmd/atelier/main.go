package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/smallbiznis/atelier/internal/clock"
	"github.com/smallbiznis/atelier/internal/config"
	"github.com/smallbiznis/atelier/internal/idgen"
	"github.com/smallbiznis/atelier/internal/migration"
	"github.com/smallbiznis/atelier/internal/observability"
	"github.com/smallbiznis/atelier/internal/seed"
	"github.com/smallbiznis/atelier/internal/server"
	"github.com/smallbiznis/atelier/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "atelier",
		Short:         "Brand and showroom registration service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), migrateCommand(), seedCommand())
	return root
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := fx.New(
				// Core infrastructure
				config.Module,
				observability.Module,
				idgen.Module,
				db.Module,
				clock.Module,
				migration.Module,

				server.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), func(conn *gorm.DB, _ idgen.Generator, log *zap.Logger) error {
				if err := migration.Run(conn); err != nil {
					return err
				}
				log.Info("schema up to date")
				return nil
			})
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert missing roles, styles and cities and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), func(conn *gorm.DB, genID idgen.Generator, log *zap.Logger) error {
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
			})
		},
	}
}

// runOnce builds a short-lived application holding only the database
// dependencies, runs task while it is constructed and then shuts it down.
func runOnce(ctx context.Context, task func(*gorm.DB, idgen.Generator, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app := fx.New(
		config.Module,
		observability.Module,
		idgen.Module,
		db.Module,
		fx.NopLogger,
		fx.Invoke(task),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	return app.Stop(stopCtx)
}

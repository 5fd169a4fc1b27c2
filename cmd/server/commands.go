package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/database/database"
	"github.com/festy23/stagegate/internal/database/migrate"
	"github.com/festy23/stagegate/internal/server"
	"github.com/festy23/stagegate/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stagegate",
		Short: "Stage-gate review service",
		Long: `stagegate runs the gate review HTTP API and manages its schema.

Configuration is read from the environment (SERVER_*, DB_*, AUTH_*, EVENTS_*,
LOG_*, GATE_POLICY_FILE).`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()
			defer func() {
				if closeErr := database.Close(db); closeErr != nil {
					log.Errorw("failed to close database", "error", closeErr)
				}
			}()

			if !skipMigrations {
				if err := migrate.Migrate(db); err != nil {
					return err
				}
				log.Infow("migrations applied")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, db, log).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Start without applying pending migrations")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withDatabase(func(log *zap.SugaredLogger, db *gorm.DB) error {
				if err := migrate.Migrate(db); err != nil {
					return err
				}
				return reportVersion(log, db)
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if steps < 0 {
				return fmt.Errorf("--steps must not be negative")
			}
			return withDatabase(func(log *zap.SugaredLogger, db *gorm.DB) error {
				if err := migrate.Rollback(db, steps); err != nil {
					return err
				}
				return reportVersion(log, db)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back (0 rolls back all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withDatabase(reportVersion)
		},
	})

	return cmd
}

func bootstrap() (config.Config, *zap.SugaredLogger, *gorm.DB, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, nil, err
	}

	log, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New()
	if err != nil {
		_ = log.Sync()
		return config.Config{}, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, log, db, nil
}

func withDatabase(fn func(*zap.SugaredLogger, *gorm.DB) error) error {
	_, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = database.Close(db)
		_ = log.Sync()
	}()
	return fn(log, db)
}

func reportVersion(log *zap.SugaredLogger, db *gorm.DB) error {
	version, dirty, err := migrate.Version(db)
	if err != nil {
		return err
	}
	log.Infow("schema version", "version", version, "dirty", dirty)
	return nil
}

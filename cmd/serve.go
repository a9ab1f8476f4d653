package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nightlife-navigator/internal/constants"
	"nightlife-navigator/internal/migrations"
	"nightlife-navigator/internal/places"
	"nightlife-navigator/internal/server"
	"nightlife-navigator/internal/store"
	"nightlife-navigator/pkg/database"
	"nightlife-navigator/pkg/events"
	"nightlife-navigator/pkg/health"
	"nightlife-navigator/pkg/logging"
	"nightlife-navigator/pkg/metrics"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (status, health, metrics and the sync trigger)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			log.Info("starting nightlife navigator", logging.Any("config", cfg.GetConfigSummary()))

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			hm := health.NewHealthManager(health.HealthConfig{Timeout: constants.HealthTimeoutDefault, Version: Version}, log)

			// The service starts without a store; health reports why.
			var db *database.DB
			switch {
			case !cfg.Store().Enabled():
				log.Warn("DATABASE_URL not set; sync and history endpoints disabled")
				hm.RegisterChecker(health.NewDatabaseHealthChecker("database", nil))
			default:
				db, err = connectStore(ctx, cfg, log, connectAttempts)
				if err != nil {
					log.Error("database unavailable; sync and history endpoints disabled", err)
					hm.RegisterChecker(health.StaticChecker("database", health.HealthStatusUnhealthy, "database unreachable at startup"))
				} else {
					defer db.Close()
					hm.RegisterChecker(health.NewDatabaseHealthChecker("database", db))
				}
			}

			if db != nil && migrateUp {
				if err := withRetry(ctx, log, "database migrations", connectAttempts, connectBackoff, func() error {
					return migrations.Up(ctx, db)
				}); err != nil {
					return err
				}
				log.Info("database migrations complete")
			}

			pc, err := places.New(cfg.Places(), log)
			if err != nil {
				return err
			}
			hm.RegisterChecker(pc.Checker())

			deps := server.Deps{
				Config:  cfg,
				Logger:  log,
				Health:  hm,
				Metrics: metrics.Default,
				Version: Version,
			}
			if db != nil {
				deps.History = events.NewSQLEventStore(db)
				deps.Venues = store.NewVenueStore(db)
				if pc.Enabled() {
					deps.Syncer = newOrchestrator(cfg, db, pc, log, true)
				}
			}

			return server.New(deps).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

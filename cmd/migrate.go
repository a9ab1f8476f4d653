package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nightlife-navigator/internal/migrations"
	"nightlife-navigator/pkg/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(ctx context.Context, db *database.DB) error {
				if err := migrations.Up(ctx, db); err != nil {
					return err
				}
				v, err := migrations.Version(ctx, db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", v, db.Dialect())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the schema version and the bundled migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(ctx context.Context, db *database.DB) error {
				v, err := migrations.Version(ctx, db)
				if err != nil {
					return err
				}
				files, err := migrations.Files(db.Dialect())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "dialect: %s\nversion: %d\n", db.Dialect(), v)
				for _, f := range files {
					fmt.Fprintf(out, "  %s\n", f)
				}
				return nil
			})
		},
	})

	return cmd
}

func withStore(opts *rootOptions, fn func(ctx context.Context, db *database.DB) error) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := connectStore(ctx, cfg, log, connectAttempts)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

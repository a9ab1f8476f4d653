package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"nightlife-navigator/internal/migrations"
	"nightlife-navigator/internal/places"
	"nightlife-navigator/internal/venuesync"
	errs "nightlife-navigator/pkg/errors"

	"github.com/spf13/cobra"
)

// newSyncCmd runs one sync and exits. Per-venue failures are reported in the
// summary; only an unreachable store makes the command fail.
func newSyncCmd(opts *rootOptions) *cobra.Command {
	var (
		region    string
		asJSON    bool
		migrateUp bool
		record    bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Enrich every venue in the directory with Google Places data, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("region") {
				cfg.RegionHint = region
			}
			if !cfg.Places().Enabled() {
				return errs.NewValidation("sync", "places lookup disabled: set GOOGLE_MAPS_API_KEY", nil)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			db, err := connectStore(ctx, cfg, log, 1)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrateUp {
				if err := migrations.Up(ctx, db); err != nil {
					return errs.NewStoreUnavailable("sync", "apply migrations", err)
				}
			}

			pc, err := places.New(cfg.Places(), log)
			if err != nil {
				return err
			}

			report, err := newOrchestrator(cfg, db, pc, log, record).Run(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "region hint appended to venue names (overrides SYNC_REGION_HINT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run report as JSON")
	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations before syncing")
	cmd.Flags().BoolVar(&record, "record", true, "record per-venue outcomes in the sync history")
	return cmd
}

func printReport(w io.Writer, r *venuesync.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VENUE\tNAME\tSTATUS\tREASON\tPLACE ID")
	for _, o := range r.Outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.VenueID, o.VenueName, o.Status, o.Reason, o.PlaceID)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nrun %s: %d venues, %d updated, %d skipped, %d errored in %s\n",
		r.RunID, r.Total(), r.Updated, r.Skipped, r.Errored, r.Duration().Round(time.Millisecond))
}

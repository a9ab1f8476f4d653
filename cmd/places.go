package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"nightlife-navigator/internal/places"
	errs "nightlife-navigator/pkg/errors"

	"github.com/spf13/cobra"
)

// newPlacesCmd exposes the lookup client directly, for checking what a sync
// would match without touching the store.
func newPlacesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "places",
		Short: "Query Google Places directly",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "search <location>",
		Short: "List bars in an area",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := placesClient(opts)
			if err != nil {
				return err
			}
			found, err := pc.SearchBars(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PLACE ID\tNAME\tADDRESS")
			for _, c := range found {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.PlaceID, c.Name, c.FormattedAddress)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "details <place-id>",
		Short: "Show the enrichment fields of one place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := placesClient(opts)
			if err != nil {
				return err
			}
			d, err := pc.FetchDetails(context.Background(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if d == nil {
				fmt.Fprintf(out, "place %s not found\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "place_id:      %s\nname:          %s\naddress:       %s\n", d.PlaceID, d.Name, d.FormattedAddress)
			fmt.Fprintf(out, "rating:        %s\nratings total: %s\nprice level:   %s\n", fmtPtr(d.Rating), fmtPtr(d.UserRatingsTotal), fmtPtr(d.PriceLevel))
			return nil
		},
	})

	return cmd
}

func placesClient(opts *rootOptions) (*places.Client, error) {
	cfg, log, err := opts.load()
	if err != nil {
		return nil, err
	}
	if !cfg.Places().Enabled() {
		return nil, errs.NewValidation("places", "places lookup disabled: set GOOGLE_MAPS_API_KEY", nil)
	}
	return places.New(cfg.Places(), log)
}

func fmtPtr[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

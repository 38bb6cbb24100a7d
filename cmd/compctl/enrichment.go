package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taxappeal/internal/app"
	"taxappeal/pkg/domain"
)

func enrichmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrichment [pin]",
		Short: "Show the cached secondary-provider record for a parcel, backfilling the raw payload if missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := domain.ParseParcelID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := a.Cache.GetFullEnrichment(ctx, pin)
				if !out.Found {
					if out.Err != nil {
						return fmt.Errorf("enrichment %s (%s): %w", pin.Display(), out.Degraded, out.Err)
					}
					return fmt.Errorf("enrichment %s: %s", pin.Display(), out.Degraded)
				}
				return printJSON(cmd.OutOrStdout(), out.Value)
			})
		},
	}
}

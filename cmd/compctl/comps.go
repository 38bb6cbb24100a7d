package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taxappeal/internal/app"
	"taxappeal/internal/comparables/service"
	"taxappeal/pkg/domain"
)

func compsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comps [pin]",
		Short: "Find comparable properties for a subject parcel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := domain.ParseParcelID(args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			secondary, _ := cmd.Flags().GetBool("secondary")
			rawKind, _ := cmd.Flags().GetString("kind")
			asJSON, _ := cmd.Flags().GetBool("json")

			kind, err := service.ParseKind(rawKind)
			if err != nil {
				return err
			}
			opts := service.Options{Limit: limit, IncludeSecondarySource: secondary, Kind: kind}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, comps, err := a.Service.Comparables(ctx, pin, opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, comps)
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PIN\tORIGIN\tPRICE\tAREA\t$/AREA\tMILES\tBOTH")
				for _, c := range comps {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
						domain.DisplayParcelID(c.PIN),
						c.Origin,
						orDash(c.SalePrice, "%.0f"),
						orDash(c.LivingArea, "%.0f"),
						orDash(c.PricePerUnitArea, "%.2f"),
						orDash(c.DistanceFromSubject, "%.2f"),
						c.InBothSources,
					)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%d comparables\n", len(comps))
				return nil
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 10, "Maximum registry comparables")
	cmd.Flags().BoolP("secondary", "s", false, "Include the secondary provider")
	cmd.Flags().StringP("kind", "k", string(service.KindSales), "Comparable kind (sales, equity)")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taxappeal/internal/app"
	"taxappeal/pkg/domain"
)

func parcelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parcel [pin]",
		Short: "Fetch a subject parcel from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := domain.ParseParcelID(args[0])
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				subject, err := a.Service.Subject(ctx, pin)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, subject)
				}

				ch := subject.Characteristics
				fmt.Fprintf(out, "Parcel %s\n", subject.PIN.Display())
				fmt.Fprintf(out, "  Address:       %s, %s %s\n", subject.Address.Line, subject.Address.City, subject.Address.State)
				fmt.Fprintf(out, "  Class:         %s\n", subject.Class)
				fmt.Fprintf(out, "  Neighborhood:  %s\n", subject.Neighborhood)
				fmt.Fprintf(out, "  Living area:   %s\n", orDash(ch.LivingArea, "%.0f"))
				fmt.Fprintf(out, "  Year built:    %s\n", orDash(ch.YearBuilt, "%d"))
				fmt.Fprintf(out, "  Bed/bath:      %s / %s\n", orDash(ch.Bedrooms, "%d"), orDash(ch.Bathrooms, "%.1f"))
				if av, ok := subject.LatestAssessment(); ok {
					fmt.Fprintf(out, "  Assessed %d:  %s (%s)\n", av.Year, orDash(av.Total, "%.0f"), av.Stage)
					fmt.Fprintf(out, "  Market value:  %s\n", orDash(av.MarketValue, "%.0f"))
				}
				if subject.TaxRate != nil {
					fmt.Fprintf(out, "  Tax rate %d:  %.3f\n", subject.TaxRateYear, *subject.TaxRate)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

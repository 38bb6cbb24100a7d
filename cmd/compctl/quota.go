package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taxappeal/internal/app"
)

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the secondary provider's monthly budget for this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				q := a.Service.Quota()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Month:      %s\n", q.Month)
				fmt.Fprintf(out, "Used:       %d\n", q.Used)
				fmt.Fprintf(out, "Ceiling:    %d\n", q.Ceiling)
				fmt.Fprintf(out, "Remaining:  %d\n", q.Remaining)
				return nil
			})
		},
	}
}

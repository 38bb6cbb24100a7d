package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taxappeal/pkg/domain"
)

func pinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin [raw]",
		Short: "Normalize a parcel id and print both forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := domain.ParseParcelID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "normalized: %s\n", pin.String())
			fmt.Fprintf(out, "display:    %s\n", pin.Display())
			return nil
		},
	}
}

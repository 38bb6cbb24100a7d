package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "compctl",
		Short:         "Operator tool for comparable property discovery",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(parcelCmd())
	rootCmd.AddCommand(compsCmd())
	rootCmd.AddCommand(enrichmentCmd())
	rootCmd.AddCommand(quotaCmd())
	rootCmd.AddCommand(pinCmd())

	return rootCmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"taxappeal/internal/app"
	"taxappeal/internal/platform/config"
	"taxappeal/internal/platform/logger"
)

// withApp builds the engine from the environment, runs fn and closes it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	level, _ := cmd.Flags().GetString("log-level")
	log := logger.NewWithWriter(os.Stderr, level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Build(ctx, config.FromEnv(), log)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash[T any](v *T, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

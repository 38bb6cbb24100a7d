// Package migrations embeds the SQL schema so the server and test containers
// apply the same files.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"taxappeal/pkg/platform/tx"
)

//go:embed *.sql
var files embed.FS

// Apply runs every embedded migration in file name order inside one
// transaction. Each file is idempotent.
func Apply(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	return tx.Run(ctx, db, func(ctx context.Context) error {
		conn := tx.Conn(ctx, db)
		for _, name := range names {
			stmt, err := files.ReadFile(name)
			if err != nil {
				return fmt.Errorf("read migration %s: %w", name, err)
			}
			if _, err := conn.ExecContext(ctx, string(stmt)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		return nil
	})
}

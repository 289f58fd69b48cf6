package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded *.up.sql file that has not been recorded in
// schema_migrations, in lexical order, each in its own transaction.
func (db *DB) Migrate(ctx context.Context) error {
	return applyMigrations(ctx, db, migrationFS, "migrations")
}

func applyMigrations(ctx context.Context, db *DB, fsys fs.FS, dir string) error {
	if _, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("ensuring schema_migrations: %w", err)
	}

	files, err := migrationFiles(fsys, dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		version := path.Base(file)

		var applied bool
		if err := db.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %s: %w", version, err)
		}
		if applied {
			continue
		}

		contents, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", version, err)
		}

		err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(contents)); err != nil {
				return fmt.Errorf("executing migration %s: %w", version, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return fmt.Errorf("recording migration %s: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "migration applied", "version", version)
	}

	return nil
}

func migrationFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		files = append(files, path.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrSchemaMismatch reports a database written by a newer verbatim.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// loadMigrations returns the embedded scripts in file name order. The
// database's PRAGMA user_version counts how many have been applied, so new
// files must sort after the existing ones and old files must never change.
func loadMigrations() ([]string, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	scripts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}

func (s *Store) migrate(ctx context.Context) error {
	scripts, err := loadMigrations()
	if err != nil {
		return err
	}
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > len(scripts) {
		return fmt.Errorf("%w: database has version %d, this build knows %d (upgrade verbatim or move %s aside)",
			ErrSchemaMismatch, current, len(scripts), s.path)
	}
	for version := current + 1; version <= len(scripts); version++ {
		err := s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, scripts[version-1]); err != nil {
				return err
			}
			// PRAGMA does not accept bound parameters.
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
	}
	return nil
}

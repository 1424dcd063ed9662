package sqlengine

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine/internal/adapters"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

const (
	tableSchemaMigrations = "schema_migrations"
	colVersion            = "version"
	colAppliedAt          = "applied_at"
	createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL
)`
)

// Migrate applies all embedded migrations of the store's dialect that are not yet recorded
// in schema_migrations. Each migration runs in its own transaction.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("creating %s table: %w", tableSchemaMigrations, err)
	}

	dir := path.Join("migrations", "postgres")
	if s.dialect == DialectSQLite {
		dir = path.Join("migrations", "sqlite")
	}

	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.applyMigration(ctx, dir, name); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) applyMigration(ctx context.Context, dir string, name string) error {
	version := strings.TrimSuffix(name, ".sql")

	script, err := fs.ReadFile(migrationsFS, path.Join(dir, name))
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	dbTx, err := s.db.BeginTx(ctx, adapters.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", name, err)
	}
	defer s.rollback(ctx, dbTx, "migrate")

	applied, err := s.isMigrationApplied(ctx, dbTx, version)
	if err != nil {
		return err
	}

	if applied {
		return nil
	}

	if _, err := dbTx.Exec(ctx, string(script)); err != nil {
		return fmt.Errorf("executing migration %s: %w", name, err)
	}

	insertSQL, args, err := s.builder.
		Insert(tableSchemaMigrations).
		Rows(goqu.Record{colVersion: version, colAppliedAt: time.Now().UTC().Format(time.RFC3339)}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	if _, err := dbTx.Exec(ctx, insertSQL, args...); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("committing migration %s: %w", name, err)
	}

	s.logInfo(ctx, logMsgMigrationApplied, logAttrVersion, version, logAttrDialect, s.dialect)

	return nil
}

func (s *Store) isMigrationApplied(ctx context.Context, dbTx adapters.DBTx, version string) (bool, error) {
	selectSQL, args, err := s.builder.
		From(tableSchemaMigrations).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colVersion).Eq(version)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, err
	}

	rows, err := dbTx.Query(ctx, selectSQL, args...)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", tableSchemaMigrations, err)
	}
	defer s.closeRows(ctx, rows)

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, err
		}
	}

	return count > 0, rows.Err()
}

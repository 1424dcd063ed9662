// Package postgreswrapper runs store tests against a real Postgres through any of the
// three adapters. The adapter is chosen with ADAPTER_TYPE (pgx.pool, sql.db or sqlx.db),
// the database with LENDING_TEST_POSTGRES_DSN. Without a DSN the tests are skipped.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine"
	"github.com/AntonStoeckl/library-loans-go/shell/config"
)

const (
	envDSN         = "LENDING_TEST_POSTGRES_DSN"
	envAdapterType = "ADAPTER_TYPE"
	truncateAll    = "TRUNCATE TABLE loans, materials, persons"
)

// Wrapper hides which adapter backs the store.
type Wrapper interface {
	GetStore() *sqlengine.Store
	exec(ctx context.Context, query string) error
	Close()
}

type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *sqlengine.Store
}

func (w *PGXPoolWrapper) GetStore() *sqlengine.Store { return w.store }
func (w *PGXPoolWrapper) Close()                     { w.pool.Close() }

func (w *PGXPoolWrapper) exec(ctx context.Context, query string) error {
	_, err := w.pool.Exec(ctx, query)
	return err
}

type SQLDBWrapper struct {
	db    *sql.DB
	store *sqlengine.Store
}

func (w *SQLDBWrapper) GetStore() *sqlengine.Store { return w.store }
func (w *SQLDBWrapper) Close()                     { _ = w.db.Close() }

func (w *SQLDBWrapper) exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

type SQLXWrapper struct {
	db    *sqlx.DB
	store *sqlengine.Store
}

func (w *SQLXWrapper) GetStore() *sqlengine.Store { return w.store }
func (w *SQLXWrapper) Close()                     { _ = w.db.Close() }

func (w *SQLXWrapper) exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

// CreateWrapperWithTestConfig connects, migrates and empties the test database.
// It skips the test when LENDING_TEST_POSTGRES_DSN is not set.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	dsn := os.Getenv(envDSN)
	if dsn == "" {
		t.Skipf("%s is not set", envDSN)
	}

	ctx := context.Background()
	wrapper := createWrapper(t, ctx, dsn, options)
	t.Cleanup(wrapper.Close)

	require.NoError(t, wrapper.GetStore().Migrate(ctx), "error migrating the test database")
	CleanUp(t, wrapper)

	return wrapper
}

func createWrapper(t testing.TB, ctx context.Context, dsn string, options []sqlengine.Option) Wrapper {
	adapterType := strings.ToLower(os.Getenv(envAdapterType))

	switch adapterType {
	case config.AdapterPGXPool, "":
		poolConfig, err := config.PostgresPGXPoolConfig(dsn)
		require.NoError(t, err, "error parsing the test dsn")

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := sqlengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating store")

		return &PGXPoolWrapper{pool: pool, store: store}

	case config.AdapterSQLDB:
		db, err := config.PostgresSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := sqlengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating store")

		return &SQLDBWrapper{db: db, store: store}

	case config.AdapterSQLXDB:
		db, err := config.PostgresSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := sqlengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating store")

		return &SQLXWrapper{db: db, store: store}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}
}

// CleanUp empties all domain tables.
func CleanUp(t testing.TB, wrapper Wrapper) {
	require.NoError(t, wrapper.exec(context.Background(), truncateAll), "error cleaning up the test database")
}

package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine"
)

// CloseFunc releases the connection pool behind a Store.
type CloseFunc func()

// OpenStore connects to the configured database and builds a sqlengine.Store for it.
// The caller must invoke the returned CloseFunc once the store is no longer used.
func OpenStore(ctx context.Context, cfg DatabaseConfig, options ...sqlengine.Option) (*sqlengine.Store, CloseFunc, error) {
	switch cfg.Driver {
	case DriverSQLite:
		db, err := SQLiteSQLDB(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlengine.NewStoreFromSQLDB(db, append(options, sqlengine.WithDialect(sqlengine.DialectSQLite))...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	case DriverPostgres:
		return openPostgresStore(ctx, cfg, options...)

	default:
		return nil, nil, fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, cfg.Driver)
	}
}

func openPostgresStore(ctx context.Context, cfg DatabaseConfig, options ...sqlengine.Option) (*sqlengine.Store, CloseFunc, error) {
	options = append(options, sqlengine.WithDialect(sqlengine.DialectPostgres))

	switch cfg.Adapter {
	case AdapterPGXPool, "":
		poolConfig, err := PostgresPGXPoolConfig(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlengine.NewStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return store, pool.Close, nil

	case AdapterSQLDB:
		db, err := PostgresSQLDB(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlengine.NewStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	case AdapterSQLXDB:
		db, err := PostgresSQLX(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown database adapter %q", ErrInvalidConfig, cfg.Adapter)
	}
}

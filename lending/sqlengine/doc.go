// Package sqlengine provides a SQL implementation of the lending.Store contract.
//
// It runs every lending operation inside one database transaction and supports
// PostgreSQL through three connection types (pgx.Pool, sql.DB via lib/pq, sqlx.DB)
// as well as SQLite through modernc.org/sqlite. Queries are built with goqu for the
// selected dialect.
//
// Consistency guarantees:
//   - Postgres transactions use SERIALIZABLE isolation; serialization failures and
//     deadlocks surface as lending.ErrConcurrencyConflict.
//   - SQLite transactions should be opened with BEGIN IMMEDIATE (DSN parameter
//     _txlock=immediate) so writers are serialized; SQLITE_BUSY surfaces as
//     lending.ErrConcurrencyConflict.
//   - The partial unique index uq_loans_open_material guarantees at most one PENDING or
//     IN_PROGRESS loan per material; a violation surfaces as lending.ErrMaterialUnavailable.
//
// Observability: a Logger (or ContextualLogger) receives SQL at debug level with
// duration_ms, finished transactions at info level, rollback and close failures at
// warn level and failed statements at error level. A MetricsCollector receives
// query and transaction durations, conflicts and database errors. A TracingCollector
// receives one span per transaction.
//
// Usage:
//
//	store, err := sqlengine.NewStoreFromPGXPool(pool, sqlengine.WithLogger(slog.Default()))
//	if err != nil {
//		// handle error
//	}
//
//	if err := store.Migrate(ctx); err != nil {
//		// handle error
//	}
//
//	err = store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
//		return tx.InsertMaterial(ctx, book)
//	})
package sqlengine

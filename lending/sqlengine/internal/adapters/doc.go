// Package adapters provide database adapter implementations for the lending SQL store.
//
// The adapter pattern lets the store work with pgxpool.Pool, sql.DB and sqlx.DB
// through one DBAdapter interface. Every store operation runs inside a DBTx, so the
// adapters mainly translate transaction handling: isolation level, read-only mode,
// commit and rollback.
package adapters

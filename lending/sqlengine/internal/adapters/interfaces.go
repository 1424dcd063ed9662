package adapters

import "context"

// TxOptions selects the transaction mode.
type TxOptions struct {
	ReadOnly     bool
	Serializable bool
}

// DBAdapter defines the database operations needed by the store.
type DBAdapter interface {
	BeginTx(ctx context.Context, opts TxOptions) (DBTx, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
}

// DBTx is an open transaction.
type DBTx interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}

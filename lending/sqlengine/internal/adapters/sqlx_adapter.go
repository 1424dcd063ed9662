package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// BeginTx starts a transaction on the sqlx.DB and returns it wrapped.
func (s *SQLXAdapter) BeginTx(ctx context.Context, opts TxOptions) (DBTx, error) {
	tx, err := s.db.BeginTxx(ctx, stdTxOptions(opts))
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx.Tx}, nil
}

// Exec executes a statement using the sqlx.DB and returns wrapped result.
func (s *SQLXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

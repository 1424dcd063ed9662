package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) BeginTx(ctx context.Context, opts TxOptions) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, stdTxOptions(opts))
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}

func (s *SQLAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

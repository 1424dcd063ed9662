package adapters

import (
	"context"
	"database/sql"
)

// stdTxOptions translates TxOptions for database/sql based drivers.
// SQLite drivers ignore the isolation level; they serialize writers by locking.
func stdTxOptions(opts TxOptions) *sql.TxOptions {
	txOptions := &sql.TxOptions{ReadOnly: opts.ReadOnly}

	if opts.Serializable {
		txOptions.Isolation = sql.LevelSerializable
	}

	return txOptions
}

// stdTx wraps standard library sql.Tx to implement DBTx interface.
type stdTx struct {
	tx *sql.Tx
}

func (s *stdTx) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func (s *stdTx) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

func (s *stdTx) Commit(_ context.Context) error {
	return s.tx.Commit()
}

func (s *stdTx) Rollback(_ context.Context) error {
	return s.tx.Rollback()
}

// stdRows wraps standard library sql.Rows to implement DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Err returns the error, if any, that was encountered during iteration.
func (s *stdRows) Err() error {
	return s.rows.Err()
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool *pgxpool.Pool
}

// NewPGXAdapter creates a new PGX adapter.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// BeginTx starts a pgx transaction with the requested isolation and access mode.
func (p *PGXAdapter) BeginTx(ctx context.Context, opts TxOptions) (DBTx, error) {
	txOptions := pgx.TxOptions{}

	if opts.Serializable {
		txOptions.IsoLevel = pgx.Serializable
	}

	if opts.ReadOnly {
		txOptions.AccessMode = pgx.ReadOnly
	}

	tx, err := p.pool.BeginTx(ctx, txOptions)
	if err != nil {
		return nil, err
	}

	return &pgxTx{tx: tx}, nil
}

// Exec executes a statement outside a transaction; without args pgx uses the simple
// protocol, so multi-statement scripts are allowed.
func (p *PGXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// pgxTx wraps pgx.Tx to implement the DBTx interface.
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

func (t *pgxTx) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Scan copies row values into provided destinations.
func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Err returns the error, if any, that was encountered during iteration.
func (p *pgxRows) Err() error {
	return p.rows.Err()
}

// Close closes the rows iterator.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}

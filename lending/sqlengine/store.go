package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine/internal/adapters"
)

const (
	// DialectPostgres selects PostgreSQL SQL generation and error classification.
	DialectPostgres = "postgres"
	// DialectSQLite selects SQLite SQL generation and error classification.
	DialectSQLite = "sqlite3"
)

const (
	logMsgBeginFailed         = "failed to begin transaction"
	logMsgCommitFailed        = "failed to commit transaction"
	logMsgRollbackFailed      = "failed to roll back transaction"
	logMsgBuildQueryFailed    = "failed to build sql"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "store operation: "
	logMsgMigrationApplied    = "migration applied"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrAction             = "action"
	logAttrDurationMS         = "duration_ms"
	logAttrRowsAffected       = "rows_affected"
	logAttrVersion            = "version"
	logAttrDialect            = "dialect"
	operationTransact         = "transact"
	operationView             = "view"
)

var ErrUnsupportedDialect = errors.New("unsupported sql dialect")
var ErrReadOnlyTransaction = errors.New("write attempted in a read-only transaction")

// Store implements lending.Store on top of a SQL database.
type Store struct {
	db               adapters.DBAdapter
	dialect          string
	builder          goqu.DialectWrapper
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
	tracingCollector lending.TracingCollector
}

// NewStoreFromPGXPool creates a Postgres Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a Store using a sql.DB with optional configuration.
// The dialect defaults to Postgres (lib/pq); use WithDialect(DialectSQLite) for modernc.org/sqlite.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, lending.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:      db,
		dialect: DialectPostgres,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.builder = goqu.Dialect(s.dialect)

	return s, nil
}

// Dialect returns the configured SQL dialect.
func (s *Store) Dialect() string {
	return s.dialect
}

// Transact runs fn in a read-write transaction; on Postgres the isolation level is SERIALIZABLE.
func (s *Store) Transact(ctx context.Context, fn lending.TxFunc) error {
	opts := adapters.TxOptions{Serializable: s.dialect == DialectPostgres}

	return s.run(ctx, operationTransact, opts, fn)
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn lending.TxFunc) error {
	return s.run(ctx, operationView, adapters.TxOptions{ReadOnly: true}, fn)
}

// run acquires a transaction, hands it to fn and commits on success.
// Every other exit path, including a panic in fn, rolls back.
func (s *Store) run(ctx context.Context, operation string, opts adapters.TxOptions, fn lending.TxFunc) error {
	start := time.Now()
	ctx, span := s.startTransactionSpan(ctx, operation)

	dbTx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		err = s.classifyError(err)
		s.logError(ctx, logMsgBeginFailed, err, logAttrAction, operation)
		s.finishTransaction(ctx, span, operation, err, time.Since(start))

		return err
	}

	done := false
	defer func() {
		if done {
			return
		}

		s.rollback(ctx, dbTx, operation)

		if p := recover(); p != nil {
			s.finishTransaction(ctx, span, operation, errors.New("panic"), time.Since(start))
			panic(p)
		}
	}()

	if fnErr := fn(ctx, &tx{store: s, dbTx: dbTx, readOnly: opts.ReadOnly}); fnErr != nil {
		done = true
		s.rollback(ctx, dbTx, operation)
		s.finishTransaction(ctx, span, operation, fnErr, time.Since(start))

		return fnErr
	}

	done = true

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		commitErr = s.classifyError(commitErr)
		s.logError(ctx, logMsgCommitFailed, commitErr, logAttrAction, operation)
		s.finishTransaction(ctx, span, operation, commitErr, time.Since(start))

		return commitErr
	}

	s.finishTransaction(ctx, span, operation, nil, time.Since(start))

	return nil
}

func (s *Store) rollback(ctx context.Context, dbTx adapters.DBTx, operation string) {
	err := dbTx.Rollback(context.WithoutCancel(ctx))
	if err == nil || errors.Is(err, sql.ErrTxDone) || errors.Is(err, pgx.ErrTxClosed) {
		return
	}

	s.logWarn(ctx, logMsgRollbackFailed, logAttrAction, operation, logAttrError, err.Error())
}

package sqlengine

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine/internal/adapters"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// sqlBuilder is satisfied by all goqu datasets.
type sqlBuilder interface {
	ToSQL() (sqlQueryString, []any, error)
}

// tx implements lending.Tx for one open database transaction.
type tx struct {
	store    *Store
	dbTx     adapters.DBTx
	readOnly bool
}

var _ lending.Tx = (*tx)(nil)

func (t *tx) dialect() goqu.DialectWrapper {
	return t.store.builder
}

// query runs a select and returns the open rows; callers must close them.
func (t *tx) query(ctx context.Context, action string, b sqlBuilder) (adapters.DBRows, error) {
	sqlQuery, args, err := b.ToSQL()
	if err != nil {
		t.store.logError(ctx, logMsgBuildQueryFailed, err, logAttrAction, action)
		return nil, err
	}

	start := time.Now()
	rows, err := t.dbTx.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)

	t.store.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if err != nil {
		err = t.store.classifyError(err)
		t.store.recordQuery(ctx, action, duration, err)
		t.store.logError(ctx, logMsgDBQueryFailed, err, logAttrAction, action, logAttrQuery, sqlQuery)

		return nil, err
	}

	t.store.recordQuery(ctx, action, duration, nil)

	return rows, nil
}

// exec runs a mutating statement and returns the number of affected rows.
func (t *tx) exec(ctx context.Context, action string, b sqlBuilder) (rowsAffectedInt64, error) {
	if t.readOnly {
		return 0, ErrReadOnlyTransaction
	}

	sqlQuery, args, err := b.ToSQL()
	if err != nil {
		t.store.logError(ctx, logMsgBuildQueryFailed, err, logAttrAction, action)
		return 0, err
	}

	start := time.Now()
	result, err := t.dbTx.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)

	t.store.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if err != nil {
		err = t.store.classifyError(err)
		t.store.recordQuery(ctx, action, duration, err)
		t.store.logError(ctx, logMsgDBExecFailed, err, logAttrAction, action, logAttrQuery, sqlQuery)

		return 0, err
	}

	t.store.recordQuery(ctx, action, duration, nil)

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		t.store.logError(ctx, logMsgRowsAffectedFailed, err, logAttrAction, action)
		return 0, err
	}

	t.store.logDebug(ctx, logMsgOperation+action, logAttrRowsAffected, rowsAffected)

	return rowsAffected, nil
}

// count runs a query that returns a single integer.
func (t *tx) count(ctx context.Context, action string, b sqlBuilder) (int, error) {
	rows, err := t.query(ctx, action, b)
	if err != nil {
		return 0, err
	}
	defer t.store.closeRows(ctx, rows)

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			t.store.logError(ctx, logMsgScanRowFailed, err, logAttrAction, action)
			return 0, err
		}
	}

	return n, rows.Err()
}

// collect scans every row with scan and closes the rows.
func collect[T any](
	ctx context.Context,
	t *tx,
	action string,
	rows adapters.DBRows,
	scan func(adapters.DBRows) (T, error),
) ([]T, error) {
	defer t.store.closeRows(ctx, rows)

	result := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			t.store.logError(ctx, logMsgScanRowFailed, err, logAttrAction, action)
			return nil, err
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, t.store.classifyError(err)
	}

	return result, nil
}

// first returns the single row of a by-id lookup, or lending.ErrNotFound.
func first[T any](items []T, err error) (T, error) {
	var empty T
	if err != nil {
		return empty, err
	}

	if len(items) == 0 {
		return empty, lending.ErrNotFound
	}

	return items[0], nil
}

func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

// containsText builds a dialect-specific case-insensitive substring predicate.
// The term must already be lower-cased.
func (t *tx) containsText(term string, columns ...string) exp.Expression {
	fn := "STRPOS(LOWER(?), ?) > 0"
	if t.store.dialect == DialectSQLite {
		fn = "INSTR(LOWER(?), ?) > 0"
	}

	predicates := make([]exp.Expression, 0, len(columns))
	for _, column := range columns {
		predicates = append(predicates, goqu.L(fn, goqu.C(column), term))
	}

	return goqu.Or(predicates...)
}

package sqlengine

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

const (
	constraintPersonsEmail          = "uq_persons_email"
	constraintPersonsEmployeeNumber = "uq_persons_employee_number"
	constraintOpenLoanPerMaterial   = "uq_loans_open_material"
	sqliteColumnEmail               = "persons.email"
	sqliteColumnEmployeeNumber      = "persons.employee_number"
	sqliteColumnLoanMaterial        = "loans.material_id"
	sqliteMsgForeignKey             = "FOREIGN KEY constraint failed"
	sqliteMsgCheck                  = "CHECK constraint failed"
)

// classifyError joins driver errors with the matching lending sentinel.
// Errors without a known classification, e.g. connectivity failures, are returned unchanged.
func (s *Store) classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgresError(err, pgErr.Code, pgErr.ConstraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyPostgresError(err, string(pqErr.Code), pqErr.Constraint)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return classifySQLiteError(err, sqliteErr.Code(), sqliteErr.Error())
	}

	return err
}

func classifyPostgresError(err error, code string, constraint string) error {
	switch code {
	case pgerrcode.UniqueViolation:
		switch constraint {
		case constraintPersonsEmail:
			return errors.Join(lending.ErrDuplicateEmail, err)
		case constraintPersonsEmployeeNumber:
			return errors.Join(lending.ErrDuplicateEmployeeNumber, err)
		case constraintOpenLoanPerMaterial:
			return errors.Join(lending.ErrMaterialUnavailable, err)
		}

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return errors.Join(lending.ErrConcurrencyConflict, err)

	case pgerrcode.ForeignKeyViolation:
		return errors.Join(lending.ErrNotFound, err)

	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return errors.Join(lending.ErrValidation, err)

	case pgerrcode.ReadOnlySQLTransaction:
		return errors.Join(ErrReadOnlyTransaction, err)
	}

	return err
}

func classifySQLiteError(err error, code int, msg string) error {
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return errors.Join(lending.ErrConcurrencyConflict, err)

	case sqlite3.SQLITE_CONSTRAINT:
		switch {
		case strings.Contains(msg, sqliteColumnEmail):
			return errors.Join(lending.ErrDuplicateEmail, err)
		case strings.Contains(msg, sqliteColumnEmployeeNumber):
			return errors.Join(lending.ErrDuplicateEmployeeNumber, err)
		case strings.Contains(msg, sqliteColumnLoanMaterial):
			return errors.Join(lending.ErrMaterialUnavailable, err)
		case strings.Contains(msg, sqliteMsgForeignKey):
			return errors.Join(lending.ErrNotFound, err)
		case strings.Contains(msg, sqliteMsgCheck):
			return errors.Join(lending.ErrValidation, err)
		}
	}

	return err
}

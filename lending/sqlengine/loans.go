package sqlengine

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/sqlengine/internal/adapters"
)

const (
	tableLoans               = "loans"
	colRequestedOn           = "requested_on"
	colEstimatedReturnOn     = "estimated_return_on"
	colState                 = "state"
	colReaderID              = "reader_id"
	colLibrarianID           = "librarian_id"
	colMaterialID            = "material_id"
	colLabel                 = "label"
	colLoanCount             = "loan_count"
	colFirstRequestedOn      = "first_requested_on"
	colLastRequestedOn       = "last_requested_on"
	aliasLoans               = "l"
	aliasMaterials           = "m"
	actionInsertLoan         = "insert loan"
	actionGetLoan            = "get loan"
	actionUpdateLoanState    = "update loan state"
	actionDeleteLoan         = "delete loan"
	actionFindLoans          = "find loans"
	actionCountLoans         = "count loans"
	actionCountLoansByState  = "count loans by state"
	actionMaterialLoanCounts = "material loan counts"
)

var loanColumns = []any{
	colID, colRequestedOn, colEstimatedReturnOn, colState,
	colReaderID, colLibrarianID, colMaterialID,
}

func scanLoan(rows adapters.DBRows) (lending.Loan, error) {
	var (
		l     lending.Loan
		state string
	)

	err := rows.Scan(
		&l.ID, &l.RequestedOn, &l.EstimatedReturnDate, &state,
		&l.ReaderID, &l.LibrarianID, &l.MaterialID,
	)
	if err != nil {
		return lending.Loan{}, err
	}

	l.State = lending.LoanState(state)

	return l, nil
}

func (t *tx) InsertLoan(ctx context.Context, loan lending.Loan) error {
	insert := t.dialect().
		Insert(tableLoans).
		Rows(goqu.Record{
			colID:                loan.ID,
			colRequestedOn:       loan.RequestedOn,
			colEstimatedReturnOn: loan.EstimatedReturnDate,
			colState:             string(loan.State),
			colReaderID:          loan.ReaderID,
			colLibrarianID:       loan.LibrarianID,
			colMaterialID:        loan.MaterialID,
		}).
		Prepared(true)

	_, err := t.exec(ctx, actionInsertLoan, insert)

	return err
}

func (t *tx) GetLoan(ctx context.Context, id uuid.UUID) (lending.Loan, error) {
	selectStmt := t.dialect().
		From(tableLoans).
		Select(loanColumns...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true)

	rows, err := t.query(ctx, actionGetLoan, selectStmt)
	if err != nil {
		return lending.Loan{}, err
	}

	return first(collect(ctx, t, actionGetLoan, rows, scanLoan))
}

// UpdateLoanState moves the loan from -> to only if it is still in state from.
// When no row matches, the loan either vanished (ErrNotFound) or was moved by
// someone else (ErrConcurrencyConflict).
func (t *tx) UpdateLoanState(ctx context.Context, id uuid.UUID, from, to lending.LoanState) error {
	update := t.dialect().
		Update(tableLoans).
		Set(goqu.Record{colState: string(to)}).
		Where(goqu.C(colID).Eq(id), goqu.C(colState).Eq(string(from))).
		Prepared(true)

	rowsAffected, err := t.exec(ctx, actionUpdateLoanState, update)
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	current, err := t.GetLoan(ctx, id)
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: loan %s is %s, expected %s", lending.ErrConcurrencyConflict, id, current.State, from)
}

func (t *tx) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	deleteStmt := t.dialect().
		Delete(tableLoans).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true)

	rowsAffected, err := t.exec(ctx, actionDeleteLoan, deleteStmt)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return lending.ErrNotFound
	}

	return nil
}

// loanConditions translates a LoanFilter into where expressions; an empty filter yields none.
func (t *tx) loanConditions(filter lending.LoanFilter) []goqu.Expression {
	conditions := make([]goqu.Expression, 0, 6)

	if id, ok := filter.ReaderID(); ok {
		conditions = append(conditions, goqu.C(colReaderID).Eq(id))
	}

	if id, ok := filter.LibrarianID(); ok {
		conditions = append(conditions, goqu.C(colLibrarianID).Eq(id))
	}

	if id, ok := filter.MaterialID(); ok {
		conditions = append(conditions, goqu.C(colMaterialID).Eq(id))
	}

	if len(filter.States()) > 0 {
		states := make([]string, 0, len(filter.States()))
		for _, state := range filter.States() {
			states = append(states, string(state))
		}

		conditions = append(conditions, goqu.C(colState).In(states))
	}

	if !filter.DueBefore().IsZero() {
		conditions = append(conditions, goqu.C(colEstimatedReturnOn).Lt(filter.DueBefore()))
	}

	if filter.Zone() != "" {
		readersInZone := t.dialect().
			From(tablePersons).
			Select(colID).
			Where(goqu.C(colZone).Eq(string(filter.Zone())))

		conditions = append(conditions, goqu.C(colReaderID).In(readersInZone))
	}

	return conditions
}

func (t *tx) FindLoans(ctx context.Context, filter lending.LoanFilter) ([]lending.Loan, error) {
	selectStmt := t.dialect().
		From(tableLoans).
		Select(loanColumns...).
		Where(t.loanConditions(filter)...).
		Order(goqu.C(string(filter.Order())).Asc(), goqu.C(colID).Asc()).
		Prepared(true)

	rows, err := t.query(ctx, actionFindLoans, selectStmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, t, actionFindLoans, rows, scanLoan)
}

func (t *tx) CountLoans(ctx context.Context, filter lending.LoanFilter) (int, error) {
	selectStmt := t.dialect().
		From(tableLoans).
		Select(goqu.COUNT(goqu.Star())).
		Where(t.loanConditions(filter)...).
		Prepared(true)

	return t.count(ctx, actionCountLoans, selectStmt)
}

// CountLoansByState returns an entry for every LoanState, zero when no loan is in it.
func (t *tx) CountLoansByState(ctx context.Context) (map[lending.LoanState]int, error) {
	selectStmt := t.dialect().
		From(tableLoans).
		Select(colState, goqu.COUNT(goqu.Star())).
		GroupBy(colState).
		Prepared(true)

	rows, err := t.query(ctx, actionCountLoansByState, selectStmt)
	if err != nil {
		return nil, err
	}

	type stateCount struct {
		state lending.LoanState
		count int
	}

	counts, err := collect(ctx, t, actionCountLoansByState, rows, func(rows adapters.DBRows) (stateCount, error) {
		var (
			state string
			count int
		)

		if err := rows.Scan(&state, &count); err != nil {
			return stateCount{}, err
		}

		return stateCount{state: lending.LoanState(state), count: count}, nil
	})
	if err != nil {
		return nil, err
	}

	result := make(map[lending.LoanState]int, len(lending.LoanStates))
	for _, state := range lending.LoanStates {
		result[state] = 0
	}

	for _, c := range counts {
		result[c.state] = c.count
	}

	return result, nil
}

// MaterialLoanCounts aggregates the loans in the given state per material,
// ordered by loan count descending and then by material id.
func (t *tx) MaterialLoanCounts(ctx context.Context, state lending.LoanState) ([]lending.MaterialLoanCount, error) {
	loans := goqu.T(tableLoans).As(aliasLoans)
	materials := goqu.T(tableMaterials).As(aliasMaterials)
	l := goqu.T(aliasLoans)
	m := goqu.T(aliasMaterials)

	selectStmt := t.dialect().
		From(loans).
		Join(materials, goqu.On(m.Col(colID).Eq(l.Col(colMaterialID)))).
		Select(
			m.Col(colID),
			goqu.COALESCE(m.Col(colTitle), m.Col(colDescription)).As(colLabel),
			goqu.COUNT(goqu.Star()).As(colLoanCount),
			goqu.MIN(l.Col(colRequestedOn)).As(colFirstRequestedOn),
			goqu.MAX(l.Col(colRequestedOn)).As(colLastRequestedOn),
		).
		Where(l.Col(colState).Eq(string(state))).
		GroupBy(m.Col(colID), m.Col(colTitle), m.Col(colDescription)).
		Order(goqu.I(colLoanCount).Desc(), m.Col(colID).Asc()).
		Prepared(true)

	rows, err := t.query(ctx, actionMaterialLoanCounts, selectStmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, t, actionMaterialLoanCounts, rows, func(rows adapters.DBRows) (lending.MaterialLoanCount, error) {
		var c lending.MaterialLoanCount

		err := rows.Scan(&c.MaterialID, &c.Label, &c.LoanCount, &c.FirstRequestedOn, &c.LastRequestedOn)

		return c, err
	})
}

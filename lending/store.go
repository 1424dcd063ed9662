package lending

import (
	"context"

	"github.com/google/uuid"
)

// TxFunc is the unit of work run inside one transaction.
// Returning nil commits; returning an error (or panicking) rolls back.
type TxFunc func(ctx context.Context, tx Tx) error

// Store hands out scoped transactions.
//
// Transact runs fn in a read-write transaction with serializable semantics.
// View runs fn in a read-only transaction; mutating calls inside View fail.
type Store interface {
	Transact(ctx context.Context, fn TxFunc) error
	View(ctx context.Context, fn TxFunc) error
}

// MaterialLoanCount aggregates the loans of one material in one state.
type MaterialLoanCount struct {
	MaterialID       uuid.UUID `json:"materialId"`
	Label            string    `json:"label"`
	LoanCount        int       `json:"loanCount"`
	FirstRequestedOn Date      `json:"firstRequestedOn"`
	LastRequestedOn  Date      `json:"lastRequestedOn"`
}

// Tx is the set of store operations available inside a transaction.
//
// Lookups by id fail with ErrNotFound. Inserts surface uniqueness violations as
// ErrDuplicateEmail, ErrDuplicateEmployeeNumber or ErrMaterialUnavailable.
// Serialization failures surface as ErrConcurrencyConflict.
type Tx interface {
	InsertPerson(ctx context.Context, person Person) error
	GetPerson(ctx context.Context, id uuid.UUID) (Person, error)
	GetPersonByEmail(ctx context.Context, email string) (Person, error)
	UpdatePerson(ctx context.Context, person Person) error
	FindPersons(ctx context.Context, filter PersonFilter) ([]Person, error)

	InsertMaterial(ctx context.Context, material Material) error
	GetMaterial(ctx context.Context, id uuid.UUID) (Material, error)
	FindMaterials(ctx context.Context, filter MaterialFilter) ([]Material, error)

	InsertLoan(ctx context.Context, loan Loan) error
	GetLoan(ctx context.Context, id uuid.UUID) (Loan, error)
	// UpdateLoanState is a compare-and-set: it fails with ErrConcurrencyConflict
	// when the loan is no longer in state from.
	UpdateLoanState(ctx context.Context, id uuid.UUID, from, to LoanState) error
	DeleteLoan(ctx context.Context, id uuid.UUID) error
	FindLoans(ctx context.Context, filter LoanFilter) ([]Loan, error)
	CountLoans(ctx context.Context, filter LoanFilter) (int, error)
	CountLoansByState(ctx context.Context) (map[LoanState]int, error)
	MaterialLoanCounts(ctx context.Context, state LoanState) ([]MaterialLoanCount, error)
}

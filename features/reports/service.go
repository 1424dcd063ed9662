package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/shell"
)

const (
	OperationCountLoansByState       = "count_loans_by_state"
	OperationCountOverdueLoans       = "count_overdue_loans"
	OperationOverdueLoans            = "overdue_loans"
	OperationLoansForReader          = "loans_for_reader"
	OperationLoansForLibrarian       = "loans_for_librarian"
	OperationLoansForZone            = "loans_for_zone"
	OperationMaterialLoanCounts      = "material_loan_counts"
	OperationPendingLoansForMaterial = "pending_loans_for_material"
	OperationSummary                 = "summary"
)

var ErrNilClock = errors.New("clock must not be nil")

// Summary is a snapshot of the loan counts taken in one transaction.
type Summary struct {
	GeneratedOn   lending.Date                `json:"generatedOn"`
	CountsByState map[lending.LoanState]int   `json:"countsByState"`
	Overdue       int                         `json:"overdue"`
	Pending       []lending.MaterialLoanCount `json:"pendingMaterials"`
}

// Service answers read-only questions about loans. It never writes.
type Service struct {
	store         lending.Store
	clock         func() time.Time
	observability shell.Observability
}

// Option configures a Service in NewService.
type Option func(*Service) error

// WithClock sets the clock that decides what is overdue. It must not be nil.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithObservability sets the logger, metrics and tracing collaborators of every query.
func WithObservability(observability shell.Observability) Option {
	return func(s *Service) error {
		s.observability = observability
		return nil
	}
}

// NewService creates a report Service on store.
func NewService(store lending.Store, options ...Option) (*Service, error) {
	if store == nil {
		return nil, lending.ErrNilStore
	}

	s := &Service{store: store, clock: time.Now}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Service) today() lending.Date {
	return lending.DateOf(s.clock())
}

// overdueFilter matches IN_PROGRESS loans whose estimated return date lies before today.
func overdueFilter(today lending.Date) lending.LoanFilter {
	return lending.BuildLoanFilter().
		InAnyStateOf(lending.LoanInProgress).
		DueBefore(today).
		OrderedByEstimatedReturnDate().
		Finalize()
}

func (s *Service) view(ctx context.Context, operation string, fn lending.TxFunc) error {
	return shell.Execute(ctx, s.observability, operation, nil, func(ctx context.Context) error {
		return s.store.View(ctx, fn)
	})
}

// CountLoansByState has an entry for every state, zero included.
func (s *Service) CountLoansByState(ctx context.Context) (map[lending.LoanState]int, error) {
	var counts map[lending.LoanState]int

	err := s.view(ctx, OperationCountLoansByState, func(ctx context.Context, tx lending.Tx) error {
		var err error
		counts, err = tx.CountLoansByState(ctx)

		return err
	})

	return counts, err
}

// CountOverdueLoans counts IN_PROGRESS loans due before today.
func (s *Service) CountOverdueLoans(ctx context.Context) (int, error) {
	var count int

	err := s.view(ctx, OperationCountOverdueLoans, func(ctx context.Context, tx lending.Tx) error {
		var err error
		count, err = tx.CountLoans(ctx, overdueFilter(s.today()))

		return err
	})

	return count, err
}

// OverdueLoans lists overdue loans, the longest overdue first.
func (s *Service) OverdueLoans(ctx context.Context) ([]lending.Loan, error) {
	return s.findLoans(ctx, OperationOverdueLoans, overdueFilter(s.today()))
}

// LoansForReader lists all loans of a reader in request order.
func (s *Service) LoansForReader(ctx context.Context, readerID uuid.UUID) ([]lending.Loan, error) {
	return s.findLoans(ctx, OperationLoansForReader, lending.BuildLoanFilter().ForReader(readerID).Finalize())
}

// LoansForLibrarian lists all loans handled by a librarian in request order.
func (s *Service) LoansForLibrarian(ctx context.Context, librarianID uuid.UUID) ([]lending.Loan, error) {
	return s.findLoans(ctx, OperationLoansForLibrarian, lending.BuildLoanFilter().ForLibrarian(librarianID).Finalize())
}

// LoansForZone lists the loans of all readers currently assigned to zone.
func (s *Service) LoansForZone(ctx context.Context, zone lending.Zone) ([]lending.Loan, error) {
	zone, err := lending.ParseZone(string(zone))
	if err != nil {
		return nil, err
	}

	return s.findLoans(ctx, OperationLoansForZone, lending.BuildLoanFilter().InZone(zone).Finalize())
}

// PendingLoansForMaterial lists the PENDING loans of one material. With the
// one-open-loan rule the result has at most one entry.
func (s *Service) PendingLoansForMaterial(ctx context.Context, materialID uuid.UUID) ([]lending.Loan, error) {
	filter := lending.BuildLoanFilter().
		ForMaterial(materialID).
		InAnyStateOf(lending.LoanPending).
		Finalize()

	return s.findLoans(ctx, OperationPendingLoansForMaterial, filter)
}

func (s *Service) findLoans(ctx context.Context, operation string, filter lending.LoanFilter) ([]lending.Loan, error) {
	var loans []lending.Loan

	err := s.view(ctx, operation, func(ctx context.Context, tx lending.Tx) error {
		var err error
		loans, err = tx.FindLoans(ctx, filter)

		return err
	})

	return loans, err
}

// MaterialLoanCounts aggregates the loans in state per material, busiest first.
func (s *Service) MaterialLoanCounts(ctx context.Context, state lending.LoanState) ([]lending.MaterialLoanCount, error) {
	state, err := lending.ParseLoanState(string(state))
	if err != nil {
		return nil, err
	}

	var counts []lending.MaterialLoanCount

	err = s.view(ctx, OperationMaterialLoanCounts, func(ctx context.Context, tx lending.Tx) error {
		var err error
		counts, err = tx.MaterialLoanCounts(ctx, state)

		return err
	})

	return counts, err
}

// PendingMaterials is MaterialLoanCounts for PENDING loans.
func (s *Service) PendingMaterials(ctx context.Context) ([]lending.MaterialLoanCount, error) {
	return s.MaterialLoanCounts(ctx, lending.LoanPending)
}

// Summary collects counts by state, the overdue count and the pending materials in one transaction.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	summary := Summary{GeneratedOn: s.today()}

	err := s.view(ctx, OperationSummary, func(ctx context.Context, tx lending.Tx) error {
		var err error

		if summary.CountsByState, err = tx.CountLoansByState(ctx); err != nil {
			return err
		}

		if summary.Overdue, err = tx.CountLoans(ctx, overdueFilter(summary.GeneratedOn)); err != nil {
			return err
		}

		summary.Pending, err = tx.MaterialLoanCounts(ctx, lending.LoanPending)

		return err
	})

	return summary, err
}

package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/shell"
)

// DefaultMaxOpenLoans is the number of PENDING or IN_PROGRESS loans a reader may hold.
const DefaultMaxOpenLoans = 3

var (
	ErrNilClock             = errors.New("clock must not be nil")
	ErrInvalidHorizonYears  = errors.New("horizon years must be positive")
	ErrNegativeMaxOpenLoans = errors.New("max open loans must not be negative")
)

// Service runs the loan operations against a lending.Store.
type Service struct {
	store         lending.Store
	clock         func() time.Time
	horizonYears  int
	maxOpenLoans  int
	retryOptions  []shell.RetryOption
	observability shell.Observability
}

// Option configures a Service in NewService. Options returning an error abort construction.
type Option func(*Service) error

// WithClock replaces time.Now; today is the calendar day of the clock's time in its location.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithHorizonYears sets how many years ahead an estimated return date may lie. Default 5.
func WithHorizonYears(years int) Option {
	return func(s *Service) error {
		if years <= 0 {
			return ErrInvalidHorizonYears
		}

		s.horizonYears = years

		return nil
	}
}

// WithMaxOpenLoans sets the per-reader limit of open loans; 0 disables it.
func WithMaxOpenLoans(limit int) Option {
	return func(s *Service) error {
		if limit < 0 {
			return ErrNegativeMaxOpenLoans
		}

		s.maxOpenLoans = limit

		return nil
	}
}

// WithRetryOptions tunes the retry on concurrency conflicts, e.g. attempts and base delay.
func WithRetryOptions(options ...shell.RetryOption) Option {
	return func(s *Service) error {
		s.retryOptions = options
		return nil
	}
}

// WithLogger sets the logger for the loan operations.
// Debug level: operation start
// Info level: completed operations and business rejections with status and duration_ms
// Error level: failed operations, e.g. store errors or exhausted retries.
func WithLogger(logger lending.Logger) Option {
	return func(s *Service) error {
		s.observability.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(s *Service) error {
		s.observability.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the collector for operation durations, outcome counters and retries.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(s *Service) error {
		s.observability.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector; each operation becomes one span.
func WithTracing(collector lending.TracingCollector) Option {
	return func(s *Service) error {
		s.observability.Tracing = collector
		return nil
	}
}

// NewService creates a loan Service on store. A nil store fails with lending.ErrNilStore.
func NewService(store lending.Store, options ...Option) (*Service, error) {
	if store == nil {
		return nil, lending.ErrNilStore
	}

	s := &Service{
		store:        store,
		clock:        time.Now,
		horizonYears: lending.DefaultHorizonYears,
		maxOpenLoans: DefaultMaxOpenLoans,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Today is the current calendar day according to the service clock.
func (s *Service) Today() lending.Date {
	return lending.DateOf(s.clock())
}

// RequestLoan creates a PENDING loan requested today. See DecideRequest for the rules.
func (s *Service) RequestLoan(ctx context.Context, command RequestLoanCommand) (lending.Loan, error) {
	var loan lending.Loan

	err := shell.Execute(ctx, s.observability, OperationRequestLoan, s.retryOptions, func(ctx context.Context) error {
		return s.store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
			today := s.Today()

			state, err := s.loadRequestState(ctx, tx, command, today)
			if err != nil {
				return err
			}

			if err := DecideRequest(state, command); err != nil {
				return err
			}

			id, err := uuid.NewV7()
			if err != nil {
				return err
			}

			candidate := lending.Loan{
				ID:                  id,
				RequestedOn:         today,
				EstimatedReturnDate: command.EstimatedReturnDate,
				State:               lending.LoanPending,
				ReaderID:            command.ReaderID,
				LibrarianID:         command.LibrarianID,
				MaterialID:          command.MaterialID,
			}

			if err := tx.InsertLoan(ctx, candidate); err != nil {
				return err
			}

			loan = candidate

			return nil
		})
	})

	return loan, err
}

func (s *Service) loadRequestState(
	ctx context.Context,
	tx lending.Tx,
	command RequestLoanCommand,
	today lending.Date,
) (RequestState, error) {
	state := RequestState{
		Today:        today,
		HorizonYears: s.horizonYears,
		MaxOpenLoans: s.maxOpenLoans,
	}

	if err := ValidateEstimatedReturnDate(today, command.EstimatedReturnDate, s.horizonYears); err != nil {
		return state, nil // rejected by DecideRequest before any lookup is needed
	}

	var err error

	if state.Reader, err = optional(tx.GetPerson(ctx, command.ReaderID)); err != nil {
		return state, err
	}

	if state.Librarian, err = optional(tx.GetPerson(ctx, command.LibrarianID)); err != nil {
		return state, err
	}

	if state.Material, err = optional(tx.GetMaterial(ctx, command.MaterialID)); err != nil {
		return state, err
	}

	openOnMaterial, err := tx.CountLoans(ctx, lending.BuildLoanFilter().
		ForMaterial(command.MaterialID).
		InAnyStateOf(lending.LoanPending, lending.LoanInProgress).
		Finalize())
	if err != nil {
		return state, err
	}

	state.MaterialHasOpenLoan = openOnMaterial > 0

	if state.ReaderOpenLoans, err = tx.CountLoans(ctx, lending.BuildLoanFilter().
		ForReader(command.ReaderID).
		InAnyStateOf(lending.LoanPending, lending.LoanInProgress).
		Finalize()); err != nil {
		return state, err
	}

	return state, nil
}

// optional turns ErrNotFound into a nil result.
func optional[T any](item T, err error) (*T, error) {
	if errors.Is(err, lending.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Approve moves a loan from PENDING to IN_PROGRESS.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (lending.Loan, error) {
	return s.transition(ctx, OperationApproveLoan, id, lending.LoanInProgress)
}

// Cancel moves a loan from PENDING to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (lending.Loan, error) {
	return s.transition(ctx, OperationCancelLoan, id, lending.LoanCancelled)
}

// Return moves a loan from IN_PROGRESS to RETURNED.
func (s *Service) Return(ctx context.Context, id uuid.UUID) (lending.Loan, error) {
	return s.transition(ctx, OperationReturnLoan, id, lending.LoanReturned)
}

// ChangeState dispatches to Approve, Cancel or Return by target state.
// PENDING and unknown targets are rejected with ErrInvalidTransition.
func (s *Service) ChangeState(ctx context.Context, id uuid.UUID, target lending.LoanState) (lending.Loan, error) {
	switch target {
	case lending.LoanInProgress:
		return s.Approve(ctx, id)
	case lending.LoanCancelled:
		return s.Cancel(ctx, id)
	case lending.LoanReturned:
		return s.Return(ctx, id)
	default:
		return lending.Loan{}, fmt.Errorf("%w: no loan can move to %q", lending.ErrInvalidTransition, target)
	}
}

func (s *Service) transition(
	ctx context.Context,
	operation string,
	id uuid.UUID,
	target lending.LoanState,
) (lending.Loan, error) {
	var loan lending.Loan

	err := shell.Execute(ctx, s.observability, operation, s.retryOptions, func(ctx context.Context) error {
		return s.store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
			current, err := tx.GetLoan(ctx, id)
			if err != nil {
				return err
			}

			next, err := current.TransitionTo(target)
			if err != nil {
				return err
			}

			if err := tx.UpdateLoanState(ctx, id, current.State, target); err != nil {
				return err
			}

			loan = next

			return nil
		})
	})

	return loan, err
}

// IsOverdue is evaluated against today on every call; nothing is persisted.
func (s *Service) IsOverdue(ctx context.Context, id uuid.UUID) (bool, error) {
	loan, err := s.view(ctx, OperationIsOverdue, id)
	if err != nil {
		return false, err
	}

	return loan.IsOverdue(s.Today()), nil
}

// GetLoan fetches a loan by id.
func (s *Service) GetLoan(ctx context.Context, id uuid.UUID) (lending.Loan, error) {
	return s.view(ctx, OperationGetLoan, id)
}

func (s *Service) view(ctx context.Context, operation string, id uuid.UUID) (lending.Loan, error) {
	var loan lending.Loan

	err := shell.Execute(ctx, s.observability, operation, s.retryOptions, func(ctx context.Context) error {
		return s.store.View(ctx, func(ctx context.Context, tx lending.Tx) error {
			var err error
			loan, err = tx.GetLoan(ctx, id)

			return err
		})
	})

	return loan, err
}

// DeleteLoan removes a loan in any state. It is an administrative override that
// bypasses the lifecycle.
func (s *Service) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	return shell.Execute(ctx, s.observability, OperationDeleteLoan, s.retryOptions, func(ctx context.Context) error {
		return s.store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
			return tx.DeleteLoan(ctx, id)
		})
	})
}

package lending

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type LoanState string

const (
	LoanPending    LoanState = "PENDING"
	LoanInProgress LoanState = "IN_PROGRESS"
	LoanReturned   LoanState = "RETURNED"
	LoanCancelled  LoanState = "CANCELLED"
)

// LoanStates lists all states in lifecycle order.
var LoanStates = []LoanState{LoanPending, LoanInProgress, LoanReturned, LoanCancelled}

// OpenLoanStates are the states that keep a material committed.
var OpenLoanStates = []LoanState{LoanPending, LoanInProgress}

var loanTransitions = map[LoanState]LoanState{
	LoanInProgress: LoanPending,
	LoanCancelled:  LoanPending,
	LoanReturned:   LoanInProgress,
}

func ParseLoanState(s string) (LoanState, error) {
	state := LoanState(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range LoanStates {
		if state == known {
			return state, nil
		}
	}

	return "", fmt.Errorf("%w: unknown loan state %q", ErrValidation, s)
}

func (s LoanState) IsOpen() bool {
	return s == LoanPending || s == LoanInProgress
}

func (s LoanState) IsTerminal() bool {
	return s == LoanReturned || s == LoanCancelled
}

// CanTransitionTo reports whether target is the direct successor of s.
func (s LoanState) CanTransitionTo(target LoanState) bool {
	from, ok := loanTransitions[target]

	return ok && from == s
}

// RequiredSourceState returns the only state a loan may be in to move into target.
func RequiredSourceState(target LoanState) (LoanState, bool) {
	from, ok := loanTransitions[target]

	return from, ok
}

// Loan associates a reader, a librarian and a material with a lifecycle state.
type Loan struct {
	ID                  uuid.UUID `json:"id"`
	RequestedOn         Date      `json:"requestedOn"`
	EstimatedReturnDate Date      `json:"estimatedReturnDate"`
	State               LoanState `json:"state"`
	ReaderID            uuid.UUID `json:"readerId"`
	LibrarianID         uuid.UUID `json:"librarianId"`
	MaterialID          uuid.UUID `json:"materialId"`
}

// IsOverdue is true iff the loan is IN_PROGRESS and its estimated return date lies
// strictly before today. A loan due today is not overdue.
func (l Loan) IsOverdue(today Date) bool {
	return l.State == LoanInProgress && l.EstimatedReturnDate.Before(today)
}

// TransitionTo returns a copy of the loan in the target state, or ErrInvalidTransition.
func (l Loan) TransitionTo(target LoanState) (Loan, error) {
	if !l.State.CanTransitionTo(target) {
		return l, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.State, target)
	}

	l.State = target

	return l, nil
}

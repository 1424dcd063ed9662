package loans

import (
	"fmt"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

const (
	failureReasonNoReturnDate           = "estimated return date is required"
	failureReasonReturnDateInPast       = "estimated return date lies before today"
	failureReasonReturnDateAfterHorizon = "estimated return date lies beyond the allowed horizon"
	failureReasonReaderNotFound         = "reader does not exist"
	failureReasonReaderCannotBorrow     = "reader status does not allow borrowing"
	failureReasonLibrarianNotFound      = "librarian does not exist"
	failureReasonMaterialNotFound       = "material does not exist"
	failureReasonMaterialOnLoan         = "material has an open loan"
	failureReasonTooManyOpenLoans       = "reader has reached the open loan limit"
)

// RequestState is everything RequestLoan needs to know to decide.
// Absent persons or materials are nil; a person of the wrong kind counts as absent.
type RequestState struct {
	Today               lending.Date
	HorizonYears        int
	MaxOpenLoans        int // 0 disables the limit
	Reader              *lending.Person
	Librarian           *lending.Person
	Material            *lending.Material
	MaterialHasOpenLoan bool
	ReaderOpenLoans     int
}

// DecideRequest decides whether a loan may be requested. It is a pure function: it only
// looks at the given state and the command.
//
// Business Rules, checked in this order:
//
//	ERROR: ErrInvalidDate if the estimated return date is missing, before today or after today + horizon
//	ERROR: ErrNotFound if the reader does not exist or is not a reader
//	ERROR: ErrReaderNotEligible if the reader is not ACTIVE
//	ERROR: ErrNotFound if the librarian does not exist or is not a librarian
//	ERROR: ErrNotFound if the material does not exist
//	ERROR: ErrMaterialUnavailable if the material has a PENDING or IN_PROGRESS loan
//	ERROR: ErrLoanLimitReached if the reader already holds MaxOpenLoans open loans
func DecideRequest(s RequestState, command RequestLoanCommand) error {
	if err := ValidateEstimatedReturnDate(s.Today, command.EstimatedReturnDate, s.HorizonYears); err != nil {
		return err
	}

	if s.Reader == nil || !s.Reader.IsReader() {
		return rejection(lending.ErrNotFound, failureReasonReaderNotFound)
	}

	if !s.Reader.Reader.Status.CanBorrow() {
		return fmt.Errorf("%w: %s (%s)", lending.ErrReaderNotEligible, failureReasonReaderCannotBorrow, s.Reader.Reader.Status)
	}

	if s.Librarian == nil || !s.Librarian.IsLibrarian() {
		return rejection(lending.ErrNotFound, failureReasonLibrarianNotFound)
	}

	if s.Material == nil {
		return rejection(lending.ErrNotFound, failureReasonMaterialNotFound)
	}

	if s.MaterialHasOpenLoan {
		return rejection(lending.ErrMaterialUnavailable, failureReasonMaterialOnLoan)
	}

	if s.MaxOpenLoans > 0 && s.ReaderOpenLoans >= s.MaxOpenLoans {
		return rejection(lending.ErrLoanLimitReached, failureReasonTooManyOpenLoans)
	}

	return nil
}

// ValidateEstimatedReturnDate accepts dates from today up to and including today + horizonYears.
func ValidateEstimatedReturnDate(today, due lending.Date, horizonYears int) error {
	if due.IsZero() {
		return rejection(lending.ErrInvalidDate, failureReasonNoReturnDate)
	}

	if due.Before(today) {
		return rejection(lending.ErrInvalidDate, failureReasonReturnDateInPast)
	}

	if due.After(today.AddYears(horizonYears)) {
		return rejection(lending.ErrInvalidDate, failureReasonReturnDateAfterHorizon)
	}

	return nil
}

func rejection(sentinel error, reason string) error {
	return fmt.Errorf("%w: %s", sentinel, reason)
}

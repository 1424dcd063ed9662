package lending

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")
var ErrValidation = errors.New("validation failed")
var ErrInvalidDate = fmt.Errorf("%w: invalid date", ErrValidation)
var ErrInvalidTransition = errors.New("invalid loan state transition")
var ErrMaterialUnavailable = errors.New("material is not available")
var ErrReaderNotEligible = errors.New("reader is not eligible to borrow")
var ErrLoanLimitReached = fmt.Errorf("%w: open loan limit reached", ErrReaderNotEligible)
var ErrDuplicateEmail = errors.New("email is already registered")
var ErrDuplicateEmployeeNumber = errors.New("employee number is already registered")
var ErrConcurrencyConflict = errors.New("concurrency conflict, transaction was not committed")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrNilStore = errors.New("store must not be nil")

// Anonymous is the donor recorded when a material's donor is unknown.
const Anonymous = "Anonymous"

// DefaultHorizonYears is how far in the future an estimated return date may lie.
const DefaultHorizonYears = 5

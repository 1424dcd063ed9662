package loans

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

const (
	OperationRequestLoan = "request_loan"
	OperationApproveLoan = "approve_loan"
	OperationCancelLoan  = "cancel_loan"
	OperationReturnLoan  = "return_loan"
	OperationIsOverdue   = "is_overdue"
	OperationGetLoan     = "get_loan"
	OperationDeleteLoan  = "delete_loan"
)

// RequestLoanCommand asks for a new PENDING loan of one material to one reader.
type RequestLoanCommand struct {
	ReaderID            uuid.UUID    `json:"readerId" validate:"required"`
	LibrarianID         uuid.UUID    `json:"librarianId" validate:"required"`
	MaterialID          uuid.UUID    `json:"materialId" validate:"required"`
	EstimatedReturnDate lending.Date `json:"estimatedReturnDate"`
}

// BuildRequestLoanCommand assembles a RequestLoanCommand.
func BuildRequestLoanCommand(
	readerID uuid.UUID,
	librarianID uuid.UUID,
	materialID uuid.UUID,
	estimatedReturnDate lending.Date,
) RequestLoanCommand {
	return RequestLoanCommand{
		ReaderID:            readerID,
		LibrarianID:         librarianID,
		MaterialID:          materialID,
		EstimatedReturnDate: estimatedReturnDate,
	}
}

package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/features/loans"
	"github.com/AntonStoeckl/library-loans-go/lending"
)

type loanHandlers struct {
	loans *loans.Service
}

type changeStateRequest struct {
	State string `json:"state" validate:"required"`
}

type overdueResponse struct {
	LoanID  uuid.UUID `json:"loanId"`
	Overdue bool      `json:"overdue"`
}

func (h loanHandlers) request(c echo.Context) error {
	var command loans.RequestLoanCommand
	if err := bindAndValidate(c, &command); err != nil {
		return err
	}

	loan, err := h.loans.RequestLoan(c.Request().Context(), command)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, loan)
}

func (h loanHandlers) get(c echo.Context) error {
	return h.byID(c, h.loans.GetLoan)
}

func (h loanHandlers) approve(c echo.Context) error {
	return h.byID(c, h.loans.Approve)
}

func (h loanHandlers) cancel(c echo.Context) error {
	return h.byID(c, h.loans.Cancel)
}

func (h loanHandlers) returnLoan(c echo.Context) error {
	return h.byID(c, h.loans.Return)
}

func (h loanHandlers) byID(c echo.Context, op func(context.Context, uuid.UUID) (lending.Loan, error)) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	loan, err := op(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loan)
}

func (h loanHandlers) changeState(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req changeStateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	loan, err := h.loans.ChangeState(c.Request().Context(), id, lending.LoanState(strings.ToUpper(strings.TrimSpace(req.State))))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loan)
}

func (h loanHandlers) overdue(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	overdue, err := h.loans.IsOverdue(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, overdueResponse{LoanID: id, Overdue: overdue})
}

func (h loanHandlers) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.loans.DeleteLoan(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/features/reports"
	"github.com/AntonStoeckl/library-loans-go/lending"
)

type reportHandlers struct {
	reports *reports.Service
}

type overdueReport struct {
	Count int            `json:"count"`
	Loans []lending.Loan `json:"loans"`
}

func (h reportHandlers) summary(c echo.Context) error {
	summary, err := h.reports.Summary(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

func (h reportHandlers) countByState(c echo.Context) error {
	counts, err := h.reports.CountLoansByState(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, counts)
}

func (h reportHandlers) overdue(c echo.Context) error {
	overdueLoans, err := h.reports.OverdueLoans(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, overdueReport{Count: len(overdueLoans), Loans: overdueLoans})
}

// materialLoanCounts takes ?state=, PENDING when absent.
func (h reportHandlers) materialLoanCounts(c echo.Context) error {
	state := lending.LoanPending
	if raw := c.QueryParam("state"); raw != "" {
		state = lending.LoanState(raw)
	}

	counts, err := h.reports.MaterialLoanCounts(c.Request().Context(), state)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, counts)
}

func (h reportHandlers) loansForReader(c echo.Context) error {
	return h.loansByID(c, h.reports.LoansForReader)
}

func (h reportHandlers) loansForLibrarian(c echo.Context) error {
	return h.loansByID(c, h.reports.LoansForLibrarian)
}

func (h reportHandlers) pendingLoansForMaterial(c echo.Context) error {
	return h.loansByID(c, h.reports.PendingLoansForMaterial)
}

func (h reportHandlers) loansByID(c echo.Context, query func(context.Context, uuid.UUID) ([]lending.Loan, error)) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	found, err := query(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, found)
}

func (h reportHandlers) loansForZone(c echo.Context) error {
	found, err := h.reports.LoansForZone(c.Request().Context(), lending.Zone(c.Param("zone")))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, found)
}

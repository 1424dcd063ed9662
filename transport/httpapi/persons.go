package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/features/identity"
	"github.com/AntonStoeckl/library-loans-go/lending"
)

type personHandlers struct {
	identity *identity.Service
}

type registerReaderRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Address  string `json:"address" validate:"notblank"`
	Zone     string `json:"zone" validate:"required"`
	Status   string `json:"status"`
}

type registerLibrarianRequest struct {
	Name           string `json:"name" validate:"notblank"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	EmployeeNumber string `json:"employeeNumber" validate:"notblank"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type zoneRequest struct {
	Zone string `json:"zone" validate:"required"`
}

type credentialRequest struct {
	Password string `json:"password" validate:"required"`
}

type verifyCredentialRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
}

type verifyCredentialResponse struct {
	Valid bool `json:"valid"`
}

func (h personHandlers) registerReader(c echo.Context) error {
	var req registerReaderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	zone, err := lending.ParseZone(req.Zone)
	if err != nil {
		return err
	}

	var status lending.ReaderStatus
	if req.Status != "" {
		if status, err = lending.ParseReaderStatus(req.Status); err != nil {
			return err
		}
	}

	reader, err := h.identity.RegisterReader(c.Request().Context(), identity.RegisterReaderCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Zone:     zone,
		Status:   status,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, reader)
}

func (h personHandlers) registerLibrarian(c echo.Context) error {
	var req registerLibrarianRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	librarian, err := h.identity.RegisterLibrarian(c.Request().Context(), identity.RegisterLibrarianCommand(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, librarian)
}

func (h personHandlers) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	person, err := h.identity.GetPerson(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, person)
}

func (h personHandlers) listReaders(c echo.Context) error {
	var query identity.ReaderQuery

	if raw := c.QueryParam("status"); raw != "" {
		status, err := lending.ParseReaderStatus(raw)
		if err != nil {
			return err
		}

		query.Status = status
	}

	if raw := c.QueryParam("zone"); raw != "" {
		zone, err := lending.ParseZone(raw)
		if err != nil {
			return err
		}

		query.Zone = zone
	}

	query.Text = c.QueryParam("q")

	readers, err := h.identity.ListReaders(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, readers)
}

func (h personHandlers) listLibrarians(c echo.Context) error {
	librarians, err := h.identity.ListLibrarians(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, librarians)
}

func (h personHandlers) changeStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reader, err := h.identity.ChangeReaderStatus(c.Request().Context(), id, lending.ReaderStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reader)
}

func (h personHandlers) changeZone(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req zoneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reader, err := h.identity.ChangeReaderZone(c.Request().Context(), id, lending.Zone(req.Zone))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reader)
}

func (h personHandlers) changeCredential(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req credentialRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.identity.ChangeCredential(c.Request().Context(), id, req.Password); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h personHandlers) verifyCredential(c echo.Context) error {
	var req verifyCredentialRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	valid, err := h.identity.VerifyCredential(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, verifyCredentialResponse{Valid: valid})
}

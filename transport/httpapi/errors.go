package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/lending"
	"github.com/AntonStoeckl/library-loans-go/lending/credential"
)

type errorResponse struct {
	Message string `json:"message"`
}

// StatusFor maps an error returned by the services to an HTTP status code.
func StatusFor(err error) int {
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, lending.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lending.ErrMaterialUnavailable),
		errors.Is(err, lending.ErrInvalidTransition),
		errors.Is(err, lending.ErrDuplicateEmail),
		errors.Is(err, lending.ErrDuplicateEmployeeNumber),
		errors.Is(err, lending.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, lending.ErrReaderNotEligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lending.ErrValidation),
		errors.Is(err, credential.ErrInvalidCredential):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusFor(err)
		message := err.Error()

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		}

		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err.Error(),
			)
			message = http.StatusText(status)
		}

		if writeErr := c.JSON(status, errorResponse{Message: message}); writeErr != nil {
			logger.WarnContext(c.Request().Context(), "failed to write error response", "error", writeErr.Error())
		}
	}
}

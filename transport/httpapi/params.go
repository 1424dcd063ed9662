package httpapi

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid id %q", c.Param("id")))
	}

	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (lending.Date, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return lending.Date{}, nil
	}

	return lending.ParseDate(raw)
}

// bindAndValidate decodes the body into req and checks its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	return c.Validate(req)
}

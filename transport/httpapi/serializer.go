package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonSerializer implements echo.JSONSerializer with json-iterator.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}

	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err)).SetInternal(err)
	}

	return nil
}

// requestValidator implements echo.Validator with the domain validator, so requests
// and domain types share the same rules.
type requestValidator struct{}

func (requestValidator) Validate(i any) error {
	return lending.ValidateStruct(i)
}

package lending

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err) // only fails for an empty tag or nil func
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	return v
}

// Validator returns the validator used for domain types, so transport layers
// validate their requests with the same rules (including "notblank").
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct validates s and converts failures into ErrValidation.
func ValidateStruct(s any) error {
	return validateStruct(s)
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		messages := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			messages = append(messages, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
		}

		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(messages, "; "))
	}

	return errors.Join(ErrValidation, err)
}

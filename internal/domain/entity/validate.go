package entity

import (
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/errors"
)

// validate is shared across entity constructors. validator instances cache
// struct metadata, so a single instance is the intended usage.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct tag validation and converts failures into the
// domain validation error, naming the offending fields.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		fields = append(fields, strings.ToLower(fieldErr.Field())+": "+fieldErr.Tag())
	}

	return errors.Wrap(domainerrors.ErrValidationFailed, strings.Join(fields, "; "))
}

package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"tracker/internal/common"
	"tracker/internal/models"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON (or
// query) name and knows the "category" tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.IsCategory(fl.Field().String())
	})
	return v
}

// validateStruct runs v over s and converts failures into a
// *common.ValidationError with one readable message per failed rule.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	verr := &common.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		if isString {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "oneof", "category":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "datetime":
		return fmt.Sprintf("The %s must be a date in YYYY-MM-DD format.", field)
	case "eqfield":
		return "The password confirmation does not match."
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

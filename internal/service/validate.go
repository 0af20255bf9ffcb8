package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"service-portal/internal/model"
)

// bcrypt only reads the first 72 bytes of a password and rejects longer ones.
const maxPasswordBytes = 72

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("bcrypt_len", validateBcryptLength)
	validate.RegisterStructValidation(validateCoordinatePair, model.Location{})
}

// validateBcryptLength limits bytes rather than characters.
func validateBcryptLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}

// validateCoordinatePair requires latitude and longitude to be given together.
func validateCoordinatePair(sl validator.StructLevel) {
	loc := sl.Current().Interface().(model.Location)
	switch {
	case loc.Lat != nil && loc.Lng == nil:
		sl.ReportError(loc.Lng, "lng", "Lng", "required_with", "lat")
	case loc.Lat == nil && loc.Lng != nil:
		sl.ReportError(loc.Lat, "lat", "Lat", "required_with", "lng")
	}
}

// validateInput runs the struct's validate tags and reports failures as
// ErrValidation.
func validateInput(input interface{}) error {
	return validationError(validate.Struct(input))
}

// validateValue checks a single value against a tag expression.
func validateValue(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s %s", ErrValidation, field, describe(fieldErrs[0]))
	}
	return err
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Field()+" "+describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "must be given together with " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + unit(fe)
	case "max":
		return "must be at most " + fe.Param() + unit(fe)
	case "bcrypt_len":
		return fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func unit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}

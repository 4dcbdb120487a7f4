package dto

import (
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(nullDecimalValue, decimal.NullDecimal{})
	return v
}

// nullDecimalValue exposes a NullDecimal to validator tags: nil when unset,
// the decimal text otherwise, so "required" distinguishes absent from zero.
func nullDecimalValue(field reflect.Value) interface{} {
	nd, ok := field.Interface().(decimal.NullDecimal)
	if !ok || !nd.Valid {
		return nil
	}
	return nd.Decimal.String()
}

// Validate checks the struct tags of a request and reports the first failing
// field as an apperrors validation error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), describe(fe))
	}
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
}

func describe(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param() + unit
	case "lte", "max":
		return "must be at most " + fe.Param() + unit
	default:
		return "is invalid"
	}
}

// Money renders a fixed-point amount with two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

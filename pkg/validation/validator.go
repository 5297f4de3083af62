package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance, reused across every config
// struct this package is asked to check.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Struct validates v against its `validate` struct tags. Use this for
// the mechanical required/min/max/oneof checks that a struct tag can
// express directly; cross-field checks (a ratio, a relationship between
// two fields) belong in a ConfigValidator chain instead.
func Struct(v any) error {
	if v == nil {
		return errors.New("validation: cannot validate a nil value")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Ratio validates that value is a probability or ratio in [0, 1]. Struct
// tags can express min/max but "this is a ratio" reads better as a
// named check at the call site (gc_threshold_ratio, fill_ratio,
// invalid_page_ratio, gc_reclaim_threshold).
func Ratio(field string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s: ratio %f must be within [0, 1]", field, value)
	}
	return nil
}

// formatValidationError converts validator errors to a single
// user-friendly message, reporting the first failing field.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}

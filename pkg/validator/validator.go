package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v}
}

// Validate checks i against its struct tags and returns a single
// human-readable message for the first failing field.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err
	}

	fieldErr := validationErrors[0]
	switch fieldErr.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fieldErr.Field())
	case "min":
		return fmt.Errorf("%s must be at least %s", fieldErr.Field(), fieldErr.Param())
	case "max":
		return fmt.Errorf("%s must not exceed %s", fieldErr.Field(), fieldErr.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s]", fieldErr.Field(), fieldErr.Param())
	default:
		return fmt.Errorf("%s is invalid", fieldErr.Field())
	}
}

package action

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const notBlankTag = "notblank"

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	return v
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

// validateInput checks fields in declaration order and reports the first
// failure.
func validateInput(v *validator.Validate, fields []Field, in Input) error {
	for _, f := range fields {
		if err := v.Var(in.Get(f.Name), f.Rule); err != nil {
			return &FieldError{Field: f.Name, Message: f.Message}
		}
	}
	return nil
}

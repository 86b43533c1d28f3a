package config

import (
	"github.com/go-playground/validator/v10"

	"walkforward-lab/internal/walkforward"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("months", func(fl validator.FieldLevel) bool {
		_, err := walkforward.ParseMonths(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("score", func(fl validator.FieldLevel) bool {
		_, err := walkforward.LookupScore(fl.Field().String())
		return err == nil
	})
	return v
}

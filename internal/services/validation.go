package services

import (
	"strconv"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the "maxbytes" tag registered.
// maxbytes limits the UTF-8 byte length of a string, unlike max which counts characters.
func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// hhmm validates "HH:mm" wall-clock strings.
func hhmm(fl validator.FieldLevel) bool {
	return hhmmPattern.MatchString(fl.Field().String())
}

// RegisterCustomValidators installs domain validations on gin's binding
// engine. Call once at startup.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("hhmm", hhmm)
}

package validation

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Albanian phone: +355 followed by 8-9 digits, optional spacing
var albanianPhoneRegex = regexp.MustCompile(`^\+355\s?\d{2}\s?\d{3}\s?\d{3,4}$`)

// RegisterCustomValidators attaches domain validators to gin's binding
// validator so request structs can use them in binding tags. Call once at
// startup before routes are registered.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("futuredate", validateFutureDate)
	_ = v.RegisterValidation("sqphone", validateAlbanianPhone)
}

// validateFutureDate checks that a time.Time field is strictly in the future.
func validateFutureDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(time.Now())
}

// validateAlbanianPhone checks the +355 phone format. Empty values pass;
// combine with required when the field is mandatory.
func validateAlbanianPhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return albanianPhoneRegex.MatchString(phone)
}

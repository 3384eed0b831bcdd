package validators

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// whatsappNumberPattern is the E.164-like recipient format: a leading '+'
// followed by 7-15 digits. Enforced at the settings boundary so the
// dispatcher never sees an unvalidated number.
var whatsappNumberPattern = regexp.MustCompile(`^\+[0-9]{7,15}$`)

// Validator adapts go-playground/validator to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator with custom rules registered
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("whatsapp_number", func(fl validator.FieldLevel) bool {
		return whatsappNumberPattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

package handlers

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Budget coding is digit groups joined by dashes, as imported from the
// provincial chart of accounts.
var budgetCodingPattern = regexp.MustCompile(`^\d+(-\d+)*$`)

// RegisterValidators installs the custom binding validators on gin's shared
// validator engine. RegisterRoutes calls it before wiring any handler.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("budgetcoding", func(fl validator.FieldLevel) bool {
			return budgetCodingPattern.MatchString(fl.Field().String())
		})
		// decimal.Decimal is a struct, so "required" would otherwise pass
		// without inspecting it. Expose it as a float so an absent or zero
		// amount fails the tag.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	}
}

// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// stockSymbolRegex matches ticker symbols like AAPL or BRK.B in any case;
// the holding service normalizes them to uppercase.
var stockSymbolRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.]{0,9}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("entry_kind", validateEntryKind)
		_ = v.RegisterValidation("stock_symbol", validateStockSymbol)
	}
}

func validateEntryKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "deposit", "withdrawal", "buy", "sell", "dividend", "fee":
		return true
	}
	return false
}

func validateStockSymbol(fl validator.FieldLevel) bool {
	return stockSymbolRegex.MatchString(fl.Field().String())
}

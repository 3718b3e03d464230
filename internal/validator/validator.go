// Package validator provides the shared validation instance and custom
// rules for engine inputs.
package validator

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// commodityRegex matches beancount-style commodity codes: uppercase
// letters and digits, starting with a letter (e.g. EUR, USD, VACHF).
var commodityRegex = regexp.MustCompile(`^[A-Z][A-Z0-9'._-]{0,22}[A-Z0-9]$`)

// amountRegex matches the decimal shapes the money codec accepts.
var amountRegex = regexp.MustCompile(`^-?[0-9]+(\.[0-9]{1,2})?$`)

// accountRegex matches ledger account names such as Expenses:Food or
// Liabilities:CreditCard.
var accountRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*(:[A-Za-z0-9][A-Za-z0-9-]*)*$`)

var (
	validate *validator.Validate
	once     sync.Once
)

// Get returns the shared validate instance with all custom rules registered.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("commodity", validateCommodity)
		_ = validate.RegisterValidation("amount", validateAmount)
		_ = validate.RegisterValidation("ledger_account", validateLedgerAccount)
	})
	return validate
}

// Struct validates a struct's `validate` tags.
func Struct(s interface{}) error {
	return Get().Struct(s)
}

func validateCommodity(fl validator.FieldLevel) bool {
	return commodityRegex.MatchString(fl.Field().String())
}

func validateAmount(fl validator.FieldLevel) bool {
	return amountRegex.MatchString(fl.Field().String())
}

func validateLedgerAccount(fl validator.FieldLevel) bool {
	return accountRegex.MatchString(fl.Field().String())
}

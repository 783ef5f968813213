// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fundledger/internal/ledger"
	"fundledger/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
		_ = v.RegisterValidation("user_role", validateUserRole)
	}
}

// validateTransactionType accepts the exact lowercase tags. ledger.ParseType
// stays lenient for stored records.
func validateTransactionType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, t := range ledger.Types {
		if string(t) == s {
			return true
		}
	}
	return false
}

// validateExpenseCategory accepts canonical codes only. Legacy labels are
// tolerated when reading stored records, never on write.
func validateExpenseCategory(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, c := range ledger.Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.Role(fl.Field().String()) {
	case models.RoleAdmin, models.RoleViewer:
		return true
	}
	return false
}

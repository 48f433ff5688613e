package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory is the closed set of expense categories the outlet tracks.
type ExpenseCategory string

const (
	ExpenseIngredients ExpenseCategory = "ingredients"
	ExpensePackaging   ExpenseCategory = "packaging"
	ExpenseUtilities   ExpenseCategory = "utilities"
	ExpenseSalaries    ExpenseCategory = "salaries"
	ExpenseRent        ExpenseCategory = "rent"
	ExpenseOther       ExpenseCategory = "other"
)

// IsValid reports whether c is one of the known categories.
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseIngredients, ExpensePackaging, ExpenseUtilities, ExpenseSalaries, ExpenseRent, ExpenseOther:
		return true
	default:
		return false
	}
}

// Expense is a logged outgoing cash amount. Expenses are independent of the
// stock and transaction core; they only feed the reporting surface.
type Expense struct {
	ID          int64           `json:"id" db:"id"`
	Category    ExpenseCategory `json:"category" db:"category" binding:"required"`
	Date        time.Time       `json:"date" db:"date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description *string         `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ExpenseFilters defines the available filters for querying expenses.
type ExpenseFilters struct {
	Category *ExpenseCategory `form:"category"`
	DateFrom *string          `form:"date_from"` // YYYY-MM-DD
	DateTo   *string          `form:"date_to"`   // YYYY-MM-DD
	Page     int              `form:"page"`
	PageSize int              `form:"page_size"`
}

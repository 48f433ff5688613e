package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pizza_pos_backend/internal/models"
)

func TestCreateExpenseRejectsUnknownCategory(t *testing.T) {
	svc := &expenseService{}
	_, err := svc.CreateExpense(CreateExpenseRequest{
		Category: models.ExpenseCategory("fun"),
		Amount:   decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateExpenseRejectsNegativeAmount(t *testing.T) {
	svc := &expenseService{}
	_, err := svc.CreateExpense(CreateExpenseRequest{
		Category: models.ExpenseIngredients,
		Amount:   decimal.NewFromInt(-500),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

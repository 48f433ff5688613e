package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pizza_pos_backend/internal/cache"
	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/repositories"
	"pizza_pos_backend/pkg/utils"
)

var ErrExpenseNotFound = errors.New("expense not found")

// CreateExpenseRequest logs one outgoing cash amount.
type CreateExpenseRequest struct {
	Category    models.ExpenseCategory `json:"category" binding:"required"`
	Date        *time.Time             `json:"date,omitempty"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Description *string                `json:"description,omitempty"`
}

// UpdateExpenseRequest edits an expense. Nil fields are unchanged.
type UpdateExpenseRequest struct {
	Category    *models.ExpenseCategory `json:"category,omitempty"`
	Date        *time.Time              `json:"date,omitempty"`
	Amount      *decimal.Decimal        `json:"amount,omitempty"`
	Description *string                 `json:"description,omitempty"`
}

// ExpenseService owns the expense-logging surface of the reporting boundary.
type ExpenseService interface {
	CreateExpense(req CreateExpenseRequest) (*models.Expense, error)
	GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error)
	GetExpenseByID(id int64) (*models.Expense, error)
	UpdateExpense(id int64, req UpdateExpenseRequest) (*models.Expense, error)
	DeleteExpense(id int64) error
}

type expenseService struct {
	expenseRepo repositories.ExpenseRepository
	views       cache.ViewCache
	db          *sql.DB
}

// NewExpenseService creates a new instance of ExpenseService.
func NewExpenseService(expenseRepo repositories.ExpenseRepository, views cache.ViewCache, db *sql.DB) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, views: views, db: db}
}

func (s *expenseService) CreateExpense(req CreateExpenseRequest) (*models.Expense, error) {
	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown expense category %q", ErrValidation, req.Category)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: expense amount must not be negative", ErrValidation)
	}

	expense := models.Expense{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}

	if _, err := s.expenseRepo.CreateExpense(s.db, &expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	s.invalidateViews()
	return &expense, nil
}

func (s *expenseService) GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error) {
	expenses, totalCount, err := s.expenseRepo.GetExpenses(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get expenses: %w", err)
	}
	return expenses, totalCount, nil
}

func (s *expenseService) GetExpenseByID(id int64) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetExpenseByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: expense %d", ErrExpenseNotFound, id)
		}
		return nil, fmt.Errorf("failed to get expense %d: %w", id, err)
	}
	return expense, nil
}

func (s *expenseService) UpdateExpense(id int64, req UpdateExpenseRequest) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(id)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, fmt.Errorf("%w: unknown expense category %q", ErrValidation, *req.Category)
		}
		expense.Category = *req.Category
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: expense amount must not be negative", ErrValidation)
		}
		expense.Amount = *req.Amount
	}
	if req.Description != nil {
		expense.Description = req.Description
	}

	if err := s.expenseRepo.UpdateExpense(s.db, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense %d: %w", id, err)
	}
	s.invalidateViews()
	return expense, nil
}

func (s *expenseService) DeleteExpense(id int64) error {
	if err := s.expenseRepo.DeleteExpense(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: expense %d", ErrExpenseNotFound, id)
		}
		return fmt.Errorf("failed to delete expense %d: %w", id, err)
	}
	s.invalidateViews()
	return nil
}

func (s *expenseService) invalidateViews() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.views.Invalidate(ctx, cache.KeyDashboardSummary); err != nil {
		utils.LogError(err, "Failed to invalidate dashboard views")
	}
	if err := s.views.InvalidatePrefix(ctx, cache.KeyExpenseReport); err != nil {
		utils.LogError(err, "Failed to invalidate expense report views")
	}
}

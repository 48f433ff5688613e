package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizza_pos_backend/internal/models"
)

// ExpenseRepository defines the database operations for logged expenses.
type ExpenseRepository interface {
	CreateExpense(executor SQLExecutor, expense *models.Expense) (int64, error)
	GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error)
	GetExpenseByID(id int64) (*models.Expense, error)
	UpdateExpense(executor SQLExecutor, expense *models.Expense) error
	DeleteExpense(executor SQLExecutor, id int64) error
}

type expenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new instance of ExpenseRepository.
func NewExpenseRepository(db *sql.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) CreateExpense(executor SQLExecutor, expense *models.Expense) (int64, error) {
	query := `INSERT INTO expenses (category, date, amount, description, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	currentTime := time.Now()
	if expense.Date.IsZero() {
		expense.Date = currentTime
	}

	var description sql.NullString
	if expense.Description != nil {
		description = sql.NullString{String: *expense.Description, Valid: true}
	}

	err := executor.QueryRow(query,
		expense.Category, expense.Date, expense.Amount, description, currentTime,
	).Scan(&expense.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating expense: %v", ErrDatabaseError, err)
	}
	expense.CreatedAt = currentTime
	return expense.ID, nil
}

func (r *expenseRepository) GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error) {
	expenses := []models.Expense{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, category, date, amount, description, created_at,
	    COUNT(*) OVER() AS total_count
	  FROM expenses`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if filters.DateFrom != nil && *filters.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, *filters.DateFrom)
		argCount++
	}
	if filters.DateTo != nil && *filters.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("date < ($%d::date + INTERVAL '1 day')", argCount))
		args = append(args, *filters.DateTo)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY date DESC, id DESC")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		page := filters.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filters.PageSize, (page-1)*filters.PageSize)
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting expenses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var expense models.Expense
		var description sql.NullString
		if err := rows.Scan(
			&expense.ID, &expense.Category, &expense.Date, &expense.Amount,
			&description, &expense.CreatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning expense: %v", ErrDatabaseError, err)
		}
		if description.Valid {
			expense.Description = &description.String
		}
		expenses = append(expenses, expense)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating expenses: %v", ErrDatabaseError, err)
	}
	return expenses, totalCount, nil
}

func (r *expenseRepository) GetExpenseByID(id int64) (*models.Expense, error) {
	var expense models.Expense
	var description sql.NullString
	query := `SELECT id, category, date, amount, description, created_at FROM expenses WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&expense.ID, &expense.Category, &expense.Date, &expense.Amount,
		&description, &expense.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting expense %d: %v", ErrDatabaseError, id, err)
	}
	if description.Valid {
		expense.Description = &description.String
	}
	return &expense, nil
}

func (r *expenseRepository) UpdateExpense(executor SQLExecutor, expense *models.Expense) error {
	query := `UPDATE expenses
	          SET category = $1, date = $2, amount = $3, description = $4
	          WHERE id = $5`

	var description sql.NullString
	if expense.Description != nil {
		description = sql.NullString{String: *expense.Description, Valid: true}
	}

	res, err := executor.Exec(query,
		expense.Category, expense.Date, expense.Amount, description, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating expense %d: %v", ErrDatabaseError, expense.ID, err)
	}
	return checkRowsAffected(res, expense.ID)
}

func (r *expenseRepository) DeleteExpense(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting expense %d: %v", ErrDatabaseError, id, err)
	}
	return checkRowsAffected(res, id)
}

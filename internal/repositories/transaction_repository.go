package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizza_pos_backend/internal/models"
)

// TransactionRepository defines the database operations for persisted sale
// rows and the per-period sequence counter behind transaction numbers.
type TransactionRepository interface {
	CreateTransaction(executor SQLExecutor, tx *models.Transaction) (int64, error)
	GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error)
	GetTransactionByID(id int64) (*models.Transaction, error)
	GetTransactionsByNumber(number string) ([]models.Transaction, error)
	UpdateTransaction(executor SQLExecutor, tx *models.Transaction) error
	DeleteTransaction(executor SQLExecutor, id int64) error

	// NextSequence atomically increments and returns the counter for a
	// numbering period (e.g. "PZ2503"). Safe against concurrent checkouts.
	NextSequence(executor SQLExecutor, period string) (int64, error)
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, date, size, flavor, quantity, state, include_box, unit_price, line_total,
	    customer_name, notes, transaction_number, pizza_lot_id, created_at`

func (r *transactionRepository) CreateTransaction(executor SQLExecutor, tx *models.Transaction) (int64, error) {
	query := `INSERT INTO transactions
	          (date, size, flavor, quantity, state, include_box, unit_price, line_total,
	           customer_name, notes, transaction_number, pizza_lot_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id`
	currentTime := time.Now()
	if tx.Date.IsZero() {
		tx.Date = currentTime
	}

	var customerName, notes sql.NullString
	if tx.CustomerName != nil {
		customerName = sql.NullString{String: *tx.CustomerName, Valid: true}
	}
	if tx.Notes != nil {
		notes = sql.NullString{String: *tx.Notes, Valid: true}
	}
	var pizzaLotID sql.NullInt64
	if tx.PizzaLotID != nil {
		pizzaLotID = sql.NullInt64{Int64: *tx.PizzaLotID, Valid: true}
	}

	err := executor.QueryRow(query,
		tx.Date, tx.Size, tx.Flavor, tx.Quantity, tx.State, tx.IncludeBox,
		tx.UnitPrice, tx.LineTotal, customerName, notes, tx.TransactionNumber,
		pizzaLotID, currentTime,
	).Scan(&tx.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating transaction: %v", ErrDatabaseError, err)
	}
	tx.CreatedAt = currentTime
	return tx.ID, nil
}

func (r *transactionRepository) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	transactions := []models.Transaction{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + transactionColumns + `,
	    COUNT(*) OVER() AS total_count
	  FROM transactions`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Number != nil && *filters.Number != "" {
		conditions = append(conditions, fmt.Sprintf("transaction_number = $%d", argCount))
		args = append(args, *filters.Number)
		argCount++
	}
	if filters.Flavor != nil && *filters.Flavor != "" {
		conditions = append(conditions, fmt.Sprintf("flavor = $%d", argCount))
		args = append(args, *filters.Flavor)
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
		return nil, 0, fmt.Errorf("%w: getting transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		tx, err := scanTransaction(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *tx)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating transactions: %v", ErrDatabaseError, err)
	}
	return transactions, totalCount, nil
}

func (r *transactionRepository) GetTransactionByID(id int64) (*models.Transaction, error) {
	row := r.db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	tx, err := scanTransactionRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting transaction %d: %v", ErrDatabaseError, id, err)
	}
	return tx, nil
}

// GetTransactionsByNumber returns all rows of one checkout in insertion
// order, the shape the receipt consumer expects.
func (r *transactionRepository) GetTransactionsByNumber(number string) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE transaction_number = $1
	          ORDER BY id ASC`
	rows, err := r.db.Query(query, number)
	if err != nil {
		return nil, fmt.Errorf("%w: getting transactions for number %s: %v", ErrDatabaseError, number, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows, nil)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transactions for number %s: %v", ErrDatabaseError, number, err)
	}
	return transactions, nil
}

func (r *transactionRepository) UpdateTransaction(executor SQLExecutor, tx *models.Transaction) error {
	query := `UPDATE transactions
	          SET date = $1, size = $2, flavor = $3, quantity = $4, state = $5, include_box = $6,
	              unit_price = $7, line_total = $8, customer_name = $9, notes = $10
	          WHERE id = $11`

	var customerName, notes sql.NullString
	if tx.CustomerName != nil {
		customerName = sql.NullString{String: *tx.CustomerName, Valid: true}
	}
	if tx.Notes != nil {
		notes = sql.NullString{String: *tx.Notes, Valid: true}
	}

	res, err := executor.Exec(query,
		tx.Date, tx.Size, tx.Flavor, tx.Quantity, tx.State, tx.IncludeBox,
		tx.UnitPrice, tx.LineTotal, customerName, notes, tx.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating transaction %d: %v", ErrDatabaseError, tx.ID, err)
	}
	return checkRowsAffected(res, tx.ID)
}

func (r *transactionRepository) DeleteTransaction(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting transaction %d: %v", ErrDatabaseError, id, err)
	}
	return checkRowsAffected(res, id)
}

func (r *transactionRepository) NextSequence(executor SQLExecutor, period string) (int64, error) {
	var value int64
	query := `INSERT INTO transaction_counters (period, value)
	          VALUES ($1, 1)
	          ON CONFLICT (period) DO UPDATE SET value = transaction_counters.value + 1
	          RETURNING value`
	if err := executor.QueryRow(query, period).Scan(&value); err != nil {
		return 0, fmt.Errorf("%w: advancing sequence for period %s: %v", ErrDatabaseError, period, err)
	}
	return value, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransactionRow(row scanner) (*models.Transaction, error) {
	var tx models.Transaction
	var customerName, notes sql.NullString
	var pizzaLotID sql.NullInt64

	err := row.Scan(
		&tx.ID, &tx.Date, &tx.Size, &tx.Flavor, &tx.Quantity, &tx.State, &tx.IncludeBox,
		&tx.UnitPrice, &tx.LineTotal, &customerName, &notes, &tx.TransactionNumber,
		&pizzaLotID, &tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customerName.Valid {
		tx.CustomerName = &customerName.String
	}
	if notes.Valid {
		tx.Notes = &notes.String
	}
	if pizzaLotID.Valid {
		tx.PizzaLotID = &pizzaLotID.Int64
	}
	return &tx, nil
}

func scanTransaction(rows *sql.Rows, totalCount *int) (*models.Transaction, error) {
	var tx models.Transaction
	var customerName, notes sql.NullString
	var pizzaLotID sql.NullInt64

	dest := []interface{}{
		&tx.ID, &tx.Date, &tx.Size, &tx.Flavor, &tx.Quantity, &tx.State, &tx.IncludeBox,
		&tx.UnitPrice, &tx.LineTotal, &customerName, &notes, &tx.TransactionNumber,
		&pizzaLotID, &tx.CreatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
	}

	if customerName.Valid {
		tx.CustomerName = &customerName.String
	}
	if notes.Valid {
		tx.Notes = &notes.String
	}
	if pizzaLotID.Valid {
		tx.PizzaLotID = &pizzaLotID.Int64
	}
	return &tx, nil
}

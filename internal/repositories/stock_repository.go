package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizza_pos_backend/internal/models"
)

// StockRepository defines the database operations for the two stock pools:
// pizza-flavor lots and box lots. It holds no business rules; FIFO ordering
// is provided as a query helper and deduction is driven by the service layer.
type StockRepository interface {
	// Pizza lots
	CreatePizzaLot(executor SQLExecutor, lot *models.PizzaStockLot) (int64, error)
	GetPizzaLots(filters models.StockFilters) ([]models.PizzaStockLot, int, error)
	GetPizzaLotByID(id int64) (*models.PizzaStockLot, error)
	GetPizzaLotsForDeduction(executor SQLExecutor, flavor string, size models.PizzaSize) ([]models.PizzaStockLot, error)
	UpdatePizzaLot(executor SQLExecutor, lot *models.PizzaStockLot) error
	UpdatePizzaLotQuantity(executor SQLExecutor, id int64, newQuantity int) error
	DeletePizzaLot(executor SQLExecutor, id int64) error
	SumPizzaQuantity() (int, error)

	// Box lots
	CreateBoxLot(executor SQLExecutor, lot *models.BoxStockLot) (int64, error)
	GetBoxLots(filters models.StockFilters) ([]models.BoxStockLot, int, error)
	GetBoxLotByID(id int64) (*models.BoxStockLot, error)
	GetBoxLotsForDeduction(executor SQLExecutor, size models.PizzaSize) ([]models.BoxStockLot, error)
	UpdateBoxLot(executor SQLExecutor, lot *models.BoxStockLot) error
	UpdateBoxLotQuantity(executor SQLExecutor, id int64, newQuantity int) error
	DeleteBoxLot(executor SQLExecutor, id int64) error
	SumBoxQuantity() (int, error)
}

type stockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new instance of StockRepository.
func NewStockRepository(db *sql.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) CreatePizzaLot(executor SQLExecutor, lot *models.PizzaStockLot) (int64, error) {
	query := `INSERT INTO pizza_stock_lots (flavor, size, quantity, cost_price, purchase_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	currentTime := time.Now()
	if lot.PurchaseDate.IsZero() {
		lot.PurchaseDate = currentTime
	}
	err := executor.QueryRow(query,
		lot.Flavor, lot.Size, lot.Quantity, lot.CostPrice, lot.PurchaseDate, currentTime, currentTime,
	).Scan(&lot.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating pizza stock lot: %v", ErrDatabaseError, err)
	}
	lot.CreatedAt = currentTime
	lot.UpdatedAt = currentTime
	return lot.ID, nil
}

func (r *stockRepository) GetPizzaLots(filters models.StockFilters) ([]models.PizzaStockLot, int, error) {
	lots := []models.PizzaStockLot{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, flavor, size, quantity, cost_price, purchase_date, created_at, updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM pizza_stock_lots`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Flavor != nil && *filters.Flavor != "" {
		conditions = append(conditions, fmt.Sprintf("flavor = $%d", argCount))
		args = append(args, *filters.Flavor)
		argCount++
	}
	if filters.Size != nil {
		conditions = append(conditions, fmt.Sprintf("size = $%d", argCount))
		args = append(args, *filters.Size)
		argCount++
	}
	if filters.InStock != nil && *filters.InStock {
		conditions = append(conditions, "quantity > 0")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY purchase_date ASC, id ASC")
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
		return nil, 0, fmt.Errorf("%w: getting pizza stock lots: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var lot models.PizzaStockLot
		if err := rows.Scan(
			&lot.ID, &lot.Flavor, &lot.Size, &lot.Quantity, &lot.CostPrice,
			&lot.PurchaseDate, &lot.CreatedAt, &lot.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning pizza stock lot: %v", ErrDatabaseError, err)
		}
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating pizza stock lots: %v", ErrDatabaseError, err)
	}
	return lots, totalCount, nil
}

func (r *stockRepository) GetPizzaLotByID(id int64) (*models.PizzaStockLot, error) {
	var lot models.PizzaStockLot
	query := `SELECT id, flavor, size, quantity, cost_price, purchase_date, created_at, updated_at
	          FROM pizza_stock_lots WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&lot.ID, &lot.Flavor, &lot.Size, &lot.Quantity, &lot.CostPrice,
		&lot.PurchaseDate, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting pizza stock lot %d: %v", ErrDatabaseError, id, err)
	}
	return &lot, nil
}

// GetPizzaLotsForDeduction returns the lots matching (flavor, size) that still
// hold stock, oldest purchase first. This ordering is the FIFO key the
// deduction algorithm walks.
func (r *stockRepository) GetPizzaLotsForDeduction(executor SQLExecutor, flavor string, size models.PizzaSize) ([]models.PizzaStockLot, error) {
	query := `SELECT id, flavor, size, quantity, cost_price, purchase_date, created_at, updated_at
	          FROM pizza_stock_lots
	          WHERE flavor = $1 AND size = $2 AND quantity > 0
	          ORDER BY purchase_date ASC, id ASC`
	rows, err := executor.Query(query, flavor, size)
	if err != nil {
		return nil, fmt.Errorf("%w: getting pizza lots for deduction: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	lots := []models.PizzaStockLot{}
	for rows.Next() {
		var lot models.PizzaStockLot
		if err := rows.Scan(
			&lot.ID, &lot.Flavor, &lot.Size, &lot.Quantity, &lot.CostPrice,
			&lot.PurchaseDate, &lot.CreatedAt, &lot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning pizza lot for deduction: %v", ErrDatabaseError, err)
		}
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pizza lots for deduction: %v", ErrDatabaseError, err)
	}
	return lots, nil
}

func (r *stockRepository) UpdatePizzaLot(executor SQLExecutor, lot *models.PizzaStockLot) error {
	query := `UPDATE pizza_stock_lots
	          SET flavor = $1, size = $2, quantity = $3, cost_price = $4, purchase_date = $5, updated_at = $6
	          WHERE id = $7`
	res, err := executor.Exec(query,
		lot.Flavor, lot.Size, lot.Quantity, lot.CostPrice, lot.PurchaseDate, time.Now(), lot.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating pizza stock lot %d: %v", ErrDatabaseError, lot.ID, err)
	}
	return checkRowsAffected(res, lot.ID)
}

// UpdatePizzaLotQuantity sets an absolute quantity on a lot. The WHERE guard
// refuses to write a negative quantity regardless of what the caller computed.
func (r *stockRepository) UpdatePizzaLotQuantity(executor SQLExecutor, id int64, newQuantity int) error {
	if newQuantity < 0 {
		return fmt.Errorf("%w: quantity for pizza lot %d must not be negative", ErrDatabaseError, id)
	}
	query := `UPDATE pizza_stock_lots SET quantity = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.Exec(query, newQuantity, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating quantity for pizza lot %d: %v", ErrDatabaseError, id, err)
	}
	return checkRowsAffected(res, id)
}

func (r *stockRepository) DeletePizzaLot(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM pizza_stock_lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting pizza stock lot %d: %v", ErrDatabaseError, id, err)
	}
	return checkRowsAffected(res, id)
}

func (r *stockRepository) SumPizzaQuantity() (int, error) {
	var total sql.NullInt64
	err := r.db.QueryRow(`SELECT SUM(quantity) FROM pizza_stock_lots`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing pizza stock: %v", ErrDatabaseError, err)
	}
	return int(total.Int64), nil
}

func (r *stockRepository) CreateBoxLot(executor SQLExecutor, lot *models.BoxStockLot) (int64, error) {
	query := `INSERT INTO box_stock_lots (size, quantity, cost_price, purchase_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	currentTime := time.Now()
	if lot.PurchaseDate.IsZero() {
		lot.PurchaseDate = currentTime
	}
	err := executor.QueryRow(query,
		lot.Size, lot.Quantity, lot.CostPrice, lot.PurchaseDate, currentTime, currentTime,
	).Scan(&lot.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating box stock lot: %v", ErrDatabaseError, err)
	}
	lot.CreatedAt = currentTime
	lot.UpdatedAt = currentTime
	return lot.ID, nil
}

func (r *stockRepository) GetBoxLots(filters models.StockFilters) ([]models.BoxStockLot, int, error) {
	lots := []models.BoxStockLot{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, size, quantity, cost_price, purchase_date, created_at, updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM box_stock_lots`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Size != nil {
		conditions = append(conditions, fmt.Sprintf("size = $%d", argCount))
		args = append(args, *filters.Size)
		argCount++
	}
	if filters.InStock != nil && *filters.InStock {
		conditions = append(conditions, "quantity > 0")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY purchase_date ASC, id ASC")
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
		return nil, 0, fmt.Errorf("%w: getting box stock lots: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var lot models.BoxStockLot
		if err := rows.Scan(
			&lot.ID, &lot.Size, &lot.Quantity, &lot.CostPrice,
			&lot.PurchaseDate, &lot.CreatedAt, &lot.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning box stock lot: %v", ErrDatabaseError, err)
		}
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating box stock lots: %v", ErrDatabaseError, err)
	}
	return lots, totalCount, nil
}

func (r *stockRepository) GetBoxLotByID(id int64) (*models.BoxStockLot, error) {
	var lot models.BoxStockLot
	query := `SELECT id, size, quantity, cost_price, purchase_date, created_at, updated_at
	          FROM box_stock_lots WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&lot.ID, &lot.Size, &lot.Quantity, &lot.CostPrice,
		&lot.PurchaseDate, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting box stock lot %d: %v", ErrDatabaseError, id, err)
	}
	return &lot, nil
}

func (r *stockRepository) GetBoxLotsForDeduction(executor SQLExecutor, size models.PizzaSize) ([]models.BoxStockLot, error) {
	query := `SELECT id, size, quantity, cost_price, purchase_date, created_at, updated_at
	          FROM box_stock_lots
	          WHERE size = $1 AND quantity > 0
	          ORDER BY purchase_date ASC, id ASC`
	rows, err := executor.Query(query, size)
	if err != nil {
		return nil, fmt.Errorf("%w: getting box lots for deduction: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	lots := []models.BoxStockLot{}
	for rows.Next() {
		var lot models.BoxStockLot
		if err := rows.Scan(
			&lot.ID, &lot.Size, &lot.Quantity, &lot.CostPrice,
			&lot.PurchaseDate, &lot.CreatedAt, &lot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning box lot for deduction: %v", ErrDatabaseError, err)
		}
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating box lots for deduction: %v", ErrDatabaseError, err)
	}
	return lots, nil
}

func (r *stockRepository) UpdateBoxLot(executor SQLExecutor, lot *models.BoxStockLot) error {
	query := `UPDATE box_stock_lots
	          SET size = $1, quantity = $2, cost_price = $3, purchase_date = $4, updated_at = $5
	          WHERE id = $6`
	res, err := executor.Exec(query,
		lot.Size, lot.Quantity, lot.CostPrice, lot.PurchaseDate, time.Now(), lot.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating box stock lot %d: %v", ErrDatabaseError, lot.ID, err)
	}
	return checkRowsAffected(res, lot.ID)
}

func (r *stockRepository) UpdateBoxLotQuantity(executor SQLExecutor, id int64, newQuantity int) error {
	if newQuantity < 0 {
		return fmt.Errorf("%w: quantity for box lot %d must not be negative", ErrDatabaseError, id)
	}
	query := `UPDATE box_stock_lots SET quantity = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.Exec(query, newQuantity, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating quantity for box lot %d: %v", ErrDatabaseError, id, err)
	}
	return checkRowsAffected(res, id)
}

func (r *stockRepository) DeleteBoxLot(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM box_stock_lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting box stock lot %d: %v", ErrDatabaseError, id, err)
	}
	return checkRowsAffected(res, id)
}

func (r *stockRepository) SumBoxQuantity() (int, error) {
	var total sql.NullInt64
	err := r.db.QueryRow(`SELECT SUM(quantity) FROM box_stock_lots`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing box stock: %v", ErrDatabaseError, err)
	}
	return int(total.Int64), nil
}

func checkRowsAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for id %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

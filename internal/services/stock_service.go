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

var ErrLotNotFound = errors.New("stock lot not found")

// --- Data Transfer Objects (DTOs) ---

// CreatePizzaLotRequest describes one purchased batch of pizzas.
type CreatePizzaLotRequest struct {
	Flavor       string           `json:"flavor" binding:"required"`
	Size         models.PizzaSize `json:"size" binding:"required"`
	Quantity     int              `json:"quantity" binding:"required,gt=0"`
	CostPrice    decimal.Decimal  `json:"cost_price"`
	PurchaseDate *time.Time       `json:"purchase_date,omitempty"`
}

// CreateBoxLotRequest describes one purchased batch of boxes.
type CreateBoxLotRequest struct {
	Size         models.PizzaSize `json:"size" binding:"required"`
	Quantity     int              `json:"quantity" binding:"required,gt=0"`
	CostPrice    decimal.Decimal  `json:"cost_price"`
	PurchaseDate *time.Time       `json:"purchase_date,omitempty"`
}

// UpdateLotRequest edits a lot's mutable fields. Nil fields are unchanged.
type UpdateLotRequest struct {
	Flavor       *string           `json:"flavor,omitempty"` // pizza lots only
	Size         *models.PizzaSize `json:"size,omitempty"`
	Quantity     *int              `json:"quantity,omitempty"`
	CostPrice    *decimal.Decimal  `json:"cost_price,omitempty"`
	PurchaseDate *time.Time        `json:"purchase_date,omitempty"`
}

// --- StockService Interface ---

// StockService owns the stock-management surface: adding purchase batches,
// cost-price and manual quantity edits, and explicit lot removal. Sale-time
// deduction lives in SaleService.
type StockService interface {
	AddPizzaLots(reqs []CreatePizzaLotRequest) ([]models.PizzaStockLot, error)
	GetPizzaLots(filters models.StockFilters) ([]models.PizzaStockLot, int, error)
	GetPizzaLotByID(id int64) (*models.PizzaStockLot, error)
	UpdatePizzaLot(id int64, req UpdateLotRequest) (*models.PizzaStockLot, error)
	DeletePizzaLot(id int64) error

	AddBoxLots(reqs []CreateBoxLotRequest) ([]models.BoxStockLot, error)
	GetBoxLots(filters models.StockFilters) ([]models.BoxStockLot, int, error)
	GetBoxLotByID(id int64) (*models.BoxStockLot, error)
	UpdateBoxLot(id int64, req UpdateLotRequest) (*models.BoxStockLot, error)
	DeleteBoxLot(id int64) error
}

type stockService struct {
	stockRepo repositories.StockRepository
	views     cache.ViewCache
	db        *sql.DB
}

// NewStockService creates a new instance of StockService.
func NewStockService(stockRepo repositories.StockRepository, views cache.ViewCache, db *sql.DB) StockService {
	return &stockService{stockRepo: stockRepo, views: views, db: db}
}

// --- Method Implementations ---

// AddPizzaLots inserts a purchase batch. All lots of the batch are written
// in one database transaction so a partial batch never lands.
func (s *stockService) AddPizzaLots(reqs []CreatePizzaLotRequest) ([]models.PizzaStockLot, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: batch has no lots", ErrValidation)
	}
	for i, req := range reqs {
		if req.Flavor == "" {
			return nil, fmt.Errorf("%w: lot %d has no flavor", ErrValidation, i+1)
		}
		if !req.Size.IsValid() {
			return nil, fmt.Errorf("%w: lot %d has unknown size %q", ErrValidation, i+1, req.Size)
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: lot %d quantity must be positive", ErrValidation, i+1)
		}
		if req.CostPrice.IsNegative() {
			return nil, fmt.Errorf("%w: lot %d cost price must not be negative", ErrValidation, i+1)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	lots := make([]models.PizzaStockLot, 0, len(reqs))
	for _, req := range reqs {
		lot := models.PizzaStockLot{
			Flavor:    req.Flavor,
			Size:      req.Size,
			Quantity:  req.Quantity,
			CostPrice: req.CostPrice,
		}
		if req.PurchaseDate != nil {
			lot.PurchaseDate = *req.PurchaseDate
		}
		if _, err := s.stockRepo.CreatePizzaLot(tx, &lot); err != nil {
			return nil, fmt.Errorf("failed to create pizza lot (%s %s): %w", req.Size, req.Flavor, err)
		}
		lots = append(lots, lot)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pizza lot batch: %w", err)
	}
	s.invalidateViews()
	return lots, nil
}

func (s *stockService) GetPizzaLots(filters models.StockFilters) ([]models.PizzaStockLot, int, error) {
	lots, totalCount, err := s.stockRepo.GetPizzaLots(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get pizza lots: %w", err)
	}
	return lots, totalCount, nil
}

func (s *stockService) GetPizzaLotByID(id int64) (*models.PizzaStockLot, error) {
	lot, err := s.stockRepo.GetPizzaLotByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: pizza lot %d", ErrLotNotFound, id)
		}
		return nil, fmt.Errorf("failed to get pizza lot %d: %w", id, err)
	}
	return lot, nil
}

func (s *stockService) UpdatePizzaLot(id int64, req UpdateLotRequest) (*models.PizzaStockLot, error) {
	lot, err := s.GetPizzaLotByID(id)
	if err != nil {
		return nil, err
	}

	if req.Flavor != nil {
		if *req.Flavor == "" {
			return nil, fmt.Errorf("%w: flavor cannot be empty if provided", ErrValidation)
		}
		lot.Flavor = *req.Flavor
	}
	if req.Size != nil {
		if !req.Size.IsValid() {
			return nil, fmt.Errorf("%w: unknown size %q", ErrValidation, *req.Size)
		}
		lot.Size = *req.Size
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
		}
		lot.Quantity = *req.Quantity
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, fmt.Errorf("%w: cost price must not be negative", ErrValidation)
		}
		lot.CostPrice = *req.CostPrice
	}
	if req.PurchaseDate != nil {
		lot.PurchaseDate = *req.PurchaseDate
	}

	if err := s.stockRepo.UpdatePizzaLot(s.db, lot); err != nil {
		return nil, fmt.Errorf("failed to update pizza lot %d: %w", id, err)
	}
	s.invalidateViews()
	return lot, nil
}

// DeletePizzaLot removes a lot outright. Zero-quantity lots are kept unless
// this is called; they never disappear as a side effect of deduction.
func (s *stockService) DeletePizzaLot(id int64) error {
	if err := s.stockRepo.DeletePizzaLot(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: pizza lot %d", ErrLotNotFound, id)
		}
		return fmt.Errorf("failed to delete pizza lot %d: %w", id, err)
	}
	s.invalidateViews()
	return nil
}

func (s *stockService) AddBoxLots(reqs []CreateBoxLotRequest) ([]models.BoxStockLot, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: batch has no lots", ErrValidation)
	}
	for i, req := range reqs {
		if !req.Size.IsValid() {
			return nil, fmt.Errorf("%w: lot %d has unknown size %q", ErrValidation, i+1, req.Size)
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: lot %d quantity must be positive", ErrValidation, i+1)
		}
		if req.CostPrice.IsNegative() {
			return nil, fmt.Errorf("%w: lot %d cost price must not be negative", ErrValidation, i+1)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	lots := make([]models.BoxStockLot, 0, len(reqs))
	for _, req := range reqs {
		lot := models.BoxStockLot{
			Size:      req.Size,
			Quantity:  req.Quantity,
			CostPrice: req.CostPrice,
		}
		if req.PurchaseDate != nil {
			lot.PurchaseDate = *req.PurchaseDate
		}
		if _, err := s.stockRepo.CreateBoxLot(tx, &lot); err != nil {
			return nil, fmt.Errorf("failed to create box lot (size %s): %w", req.Size, err)
		}
		lots = append(lots, lot)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit box lot batch: %w", err)
	}
	s.invalidateViews()
	return lots, nil
}

func (s *stockService) GetBoxLots(filters models.StockFilters) ([]models.BoxStockLot, int, error) {
	lots, totalCount, err := s.stockRepo.GetBoxLots(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get box lots: %w", err)
	}
	return lots, totalCount, nil
}

func (s *stockService) GetBoxLotByID(id int64) (*models.BoxStockLot, error) {
	lot, err := s.stockRepo.GetBoxLotByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: box lot %d", ErrLotNotFound, id)
		}
		return nil, fmt.Errorf("failed to get box lot %d: %w", id, err)
	}
	return lot, nil
}

func (s *stockService) UpdateBoxLot(id int64, req UpdateLotRequest) (*models.BoxStockLot, error) {
	lot, err := s.GetBoxLotByID(id)
	if err != nil {
		return nil, err
	}

	if req.Size != nil {
		if !req.Size.IsValid() {
			return nil, fmt.Errorf("%w: unknown size %q", ErrValidation, *req.Size)
		}
		lot.Size = *req.Size
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
		}
		lot.Quantity = *req.Quantity
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, fmt.Errorf("%w: cost price must not be negative", ErrValidation)
		}
		lot.CostPrice = *req.CostPrice
	}
	if req.PurchaseDate != nil {
		lot.PurchaseDate = *req.PurchaseDate
	}

	if err := s.stockRepo.UpdateBoxLot(s.db, lot); err != nil {
		return nil, fmt.Errorf("failed to update box lot %d: %w", id, err)
	}
	s.invalidateViews()
	return lot, nil
}

func (s *stockService) DeleteBoxLot(id int64) error {
	if err := s.stockRepo.DeleteBoxLot(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: box lot %d", ErrLotNotFound, id)
		}
		return fmt.Errorf("failed to delete box lot %d: %w", id, err)
	}
	s.invalidateViews()
	return nil
}

func (s *stockService) invalidateViews() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.views.Invalidate(ctx, cache.KeyDashboardSummary, cache.KeyStockReport); err != nil {
		utils.LogError(err, "Failed to invalidate stock views")
	}
}

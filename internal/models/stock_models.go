package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PizzaSize is the closed set of sizes the outlet sells.
type PizzaSize string

const (
	SizeSmall  PizzaSize = "small"
	SizeMedium PizzaSize = "medium"
)

// IsValid reports whether s is one of the known sizes.
func (s PizzaSize) IsValid() bool {
	return s == SizeSmall || s == SizeMedium
}

// PizzaStockLot represents one purchase batch of pizzas for a (flavor, size).
// Several lots may exist for the same flavor and size; the purchase date is
// the FIFO ordering key when stock is deducted.
type PizzaStockLot struct {
	ID           int64           `json:"id" db:"id"`
	Flavor       string          `json:"flavor" db:"flavor" binding:"required"`
	Size         PizzaSize       `json:"size" db:"size" binding:"required"`
	Quantity     int             `json:"quantity" db:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price" db:"cost_price"`
	PurchaseDate time.Time       `json:"purchase_date" db:"purchase_date"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// BoxStockLot represents one purchase batch of pizza boxes for a size.
// Boxes carry no flavor dimension.
type BoxStockLot struct {
	ID           int64           `json:"id" db:"id"`
	Size         PizzaSize       `json:"size" db:"size" binding:"required"`
	Quantity     int             `json:"quantity" db:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price" db:"cost_price"`
	PurchaseDate time.Time       `json:"purchase_date" db:"purchase_date"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// StockFilters defines the available filters for querying stock lots.
type StockFilters struct {
	Flavor   *string    `form:"flavor"`
	Size     *PizzaSize `form:"size"`
	InStock  *bool      `form:"in_stock"` // quantity > 0 only
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

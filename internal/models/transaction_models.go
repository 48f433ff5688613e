package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemState is the closed cooked/frozen state of a sold pizza. Free-text
// input is normalized into this enum once, at the service boundary.
type ItemState string

const (
	StateFrozen ItemState = "frozen"
	StateCooked ItemState = "cooked"
)

// Transaction is one persisted line item of a checkout. All rows created
// from one checkout submission share the same TransactionNumber.
type Transaction struct {
	ID                int64           `json:"id" db:"id"`
	Date              time.Time       `json:"date" db:"date"`
	Size              PizzaSize       `json:"size" db:"size"`
	Flavor            string          `json:"flavor" db:"flavor"`
	Quantity          int             `json:"quantity" db:"quantity"`
	State             ItemState       `json:"state" db:"state"`
	IncludeBox        bool            `json:"include_box" db:"include_box"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineTotal         decimal.Decimal `json:"line_total" db:"line_total"`
	CustomerName      *string         `json:"customer_name,omitempty" db:"customer_name"`
	Notes             *string         `json:"notes,omitempty" db:"notes"`
	TransactionNumber string          `json:"transaction_number" db:"transaction_number"`
	PizzaLotID        *int64          `json:"pizza_lot_id,omitempty" db:"pizza_lot_id"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// TransactionFilters defines the available filters for querying transactions.
type TransactionFilters struct {
	Number   *string `form:"number"`
	Flavor   *string `form:"flavor"`
	DateFrom *string `form:"date_from"` // YYYY-MM-DD
	DateTo   *string `form:"date_to"`   // YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRequestParams holds the common query parameters for reports.
type ReportRequestParams struct {
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Period    string // daily, weekly, monthly, custom
	Flavor    *string
	Size      *PizzaSize
}

// SalesReportItem represents one aggregated bucket of a sales report,
// grouped by day, flavor or size depending on the query.
type SalesReportItem struct {
	Date          string          `json:"date,omitempty"` // YYYY-MM-DD
	Flavor        *string         `json:"flavor,omitempty"`
	Size          *PizzaSize      `json:"size,omitempty"`
	TotalQuantity int             `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

// ExpenseReportItem represents one aggregated bucket of an expense report.
type ExpenseReportItem struct {
	Date        string          `json:"date,omitempty"`
	Category    ExpenseCategory `json:"category,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// StockReportItem flags lots that are low or out of stock.
type StockReportItem struct {
	LotID        int64     `json:"lot_id"`
	Flavor       *string   `json:"flavor,omitempty"` // nil for box lots
	Size         PizzaSize `json:"size"`
	Quantity     int       `json:"quantity"`
	PurchaseDate time.Time `json:"purchase_date"`
	Status       string    `json:"status"` // "Out of Stock", "Low Stock", "In Stock"
}

// DashboardSummary holds the key figures shown on the cash dashboard.
type DashboardSummary struct {
	SalesToday        decimal.Decimal `json:"sales_today"`
	SalesThisMonth    decimal.Decimal `json:"sales_this_month"`
	ExpensesThisMonth decimal.Decimal `json:"expenses_this_month"`
	ProfitThisMonth   decimal.Decimal `json:"profit_this_month"`
	CheckoutsToday    int             `json:"checkouts_today"`
	PizzasInStock     int             `json:"pizzas_in_stock"`
	BoxesInStock      int             `json:"boxes_in_stock"`
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pizza_pos_backend/internal/cache"
	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/repositories"
	"pizza_pos_backend/pkg/utils"
)

const (
	reportDateLayout  = "2006-01-02"
	lowStockThreshold = 5
	viewCacheTTL      = 5 * time.Minute
)

// ReportService aggregates committed transactions, expenses and stock into
// the dashboard views. Heavy views are served read-through from the view
// cache; the writers invalidate after every commit, so a cached value is
// display-only and never feeds business logic.
type ReportService interface {
	GetDashboardSummary() (*models.DashboardSummary, error)
	GetSalesReport(params models.ReportRequestParams) ([]models.SalesReportItem, error)
	GetExpenseReport(params models.ReportRequestParams) ([]models.ExpenseReportItem, error)
	GetStockReport() ([]models.StockReportItem, error)
}

type reportService struct {
	txRepo      repositories.TransactionRepository
	expenseRepo repositories.ExpenseRepository
	stockRepo   repositories.StockRepository
	views       cache.ViewCache
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	txRepo repositories.TransactionRepository,
	expenseRepo repositories.ExpenseRepository,
	stockRepo repositories.StockRepository,
	views cache.ViewCache,
) ReportService {
	return &reportService{
		txRepo:      txRepo,
		expenseRepo: expenseRepo,
		stockRepo:   stockRepo,
		views:       views,
	}
}

func (s *reportService) GetDashboardSummary() (*models.DashboardSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cached models.DashboardSummary
	if hit, err := s.views.GetJSON(ctx, cache.KeyDashboardSummary, &cached); err != nil {
		utils.LogError(err, "Failed to read dashboard summary from cache")
	} else if hit {
		return &cached, nil
	}

	now := time.Now()
	today := now.Format(reportDateLayout)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(reportDateLayout)

	monthTx, _, err := s.txRepo.GetTransactions(models.TransactionFilters{DateFrom: &monthStart, DateTo: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for dashboard: %w", err)
	}
	monthExpenses, _, err := s.expenseRepo.GetExpenses(models.ExpenseFilters{DateFrom: &monthStart, DateTo: &today})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for dashboard: %w", err)
	}
	pizzasInStock, err := s.stockRepo.SumPizzaQuantity()
	if err != nil {
		return nil, fmt.Errorf("failed to sum pizza stock for dashboard: %w", err)
	}
	boxesInStock, err := s.stockRepo.SumBoxQuantity()
	if err != nil {
		return nil, fmt.Errorf("failed to sum box stock for dashboard: %w", err)
	}

	summary := models.DashboardSummary{
		SalesToday:        decimal.Zero,
		SalesThisMonth:    decimal.Zero,
		ExpensesThisMonth: decimal.Zero,
		PizzasInStock:     pizzasInStock,
		BoxesInStock:      boxesInStock,
	}
	checkoutsToday := map[string]struct{}{}
	for _, tx := range monthTx {
		summary.SalesThisMonth = summary.SalesThisMonth.Add(tx.LineTotal)
		if tx.Date.Format(reportDateLayout) == today {
			summary.SalesToday = summary.SalesToday.Add(tx.LineTotal)
			checkoutsToday[tx.TransactionNumber] = struct{}{}
		}
	}
	summary.CheckoutsToday = len(checkoutsToday)
	for _, expense := range monthExpenses {
		summary.ExpensesThisMonth = summary.ExpensesThisMonth.Add(expense.Amount)
	}
	summary.ProfitThisMonth = summary.SalesThisMonth.Sub(summary.ExpensesThisMonth)

	if err := s.views.SetJSON(ctx, cache.KeyDashboardSummary, &summary, viewCacheTTL); err != nil {
		utils.LogError(err, "Failed to cache dashboard summary")
	}
	return &summary, nil
}

// reportCacheKey appends the filter parameters to the view key so each
// filter combination caches independently under the same prefix.
func reportCacheKey(base string, params models.ReportRequestParams) string {
	parts := []string{base, params.StartDate, params.EndDate}
	if params.Flavor != nil {
		parts = append(parts, *params.Flavor)
	}
	if params.Size != nil {
		parts = append(parts, string(*params.Size))
	}
	return strings.Join(parts, ":")
}

// GetSalesReport buckets committed transactions per day within the requested
// range, optionally narrowed to one flavor or size.
func (s *reportService) GetSalesReport(params models.ReportRequestParams) ([]models.SalesReportItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := reportCacheKey(cache.KeySalesReport, params)
	var cached []models.SalesReportItem
	if hit, err := s.views.GetJSON(ctx, key, &cached); err != nil {
		utils.LogError(err, "Failed to read sales report from cache")
	} else if hit {
		return cached, nil
	}

	filters := models.TransactionFilters{Flavor: params.Flavor}
	if params.StartDate != "" {
		filters.DateFrom = &params.StartDate
	}
	if params.EndDate != "" {
		filters.DateTo = &params.EndDate
	}

	transactions, _, err := s.txRepo.GetTransactions(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for sales report: %w", err)
	}

	type bucket struct {
		quantity int
		sales    decimal.Decimal
	}
	buckets := map[string]*bucket{}
	for _, tx := range transactions {
		if params.Size != nil && tx.Size != *params.Size {
			continue
		}
		day := tx.Date.Format(reportDateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{sales: decimal.Zero}
			buckets[day] = b
		}
		b.quantity += tx.Quantity
		b.sales = b.sales.Add(tx.LineTotal)
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	items := make([]models.SalesReportItem, 0, len(days))
	for _, day := range days {
		items = append(items, models.SalesReportItem{
			Date:          day,
			Flavor:        params.Flavor,
			Size:          params.Size,
			TotalQuantity: buckets[day].quantity,
			TotalSales:    buckets[day].sales,
		})
	}

	if err := s.views.SetJSON(ctx, key, items, viewCacheTTL); err != nil {
		utils.LogError(err, "Failed to cache sales report")
	}
	return items, nil
}

// GetExpenseReport buckets expenses per category within the requested range.
func (s *reportService) GetExpenseReport(params models.ReportRequestParams) ([]models.ExpenseReportItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := reportCacheKey(cache.KeyExpenseReport, params)
	var cached []models.ExpenseReportItem
	if hit, err := s.views.GetJSON(ctx, key, &cached); err != nil {
		utils.LogError(err, "Failed to read expense report from cache")
	} else if hit {
		return cached, nil
	}

	filters := models.ExpenseFilters{}
	if params.StartDate != "" {
		filters.DateFrom = &params.StartDate
	}
	if params.EndDate != "" {
		filters.DateTo = &params.EndDate
	}

	expenses, _, err := s.expenseRepo.GetExpenses(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for report: %w", err)
	}

	totals := map[models.ExpenseCategory]decimal.Decimal{}
	for _, expense := range expenses {
		current, ok := totals[expense.Category]
		if !ok {
			current = decimal.Zero
		}
		totals[expense.Category] = current.Add(expense.Amount)
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	items := make([]models.ExpenseReportItem, 0, len(categories))
	for _, category := range categories {
		items = append(items, models.ExpenseReportItem{
			Category:    models.ExpenseCategory(category),
			TotalAmount: totals[models.ExpenseCategory(category)],
		})
	}

	if err := s.views.SetJSON(ctx, key, items, viewCacheTTL); err != nil {
		utils.LogError(err, "Failed to cache expense report")
	}
	return items, nil
}

// GetStockReport lists every lot of both pools with a stock status flag.
func (s *reportService) GetStockReport() ([]models.StockReportItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cached []models.StockReportItem
	if hit, err := s.views.GetJSON(ctx, cache.KeyStockReport, &cached); err != nil {
		utils.LogError(err, "Failed to read stock report from cache")
	} else if hit {
		return cached, nil
	}

	pizzaLots, _, err := s.stockRepo.GetPizzaLots(models.StockFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load pizza lots for stock report: %w", err)
	}
	boxLots, _, err := s.stockRepo.GetBoxLots(models.StockFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load box lots for stock report: %w", err)
	}

	items := make([]models.StockReportItem, 0, len(pizzaLots)+len(boxLots))
	for _, lot := range pizzaLots {
		flavor := lot.Flavor
		items = append(items, models.StockReportItem{
			LotID:        lot.ID,
			Flavor:       &flavor,
			Size:         lot.Size,
			Quantity:     lot.Quantity,
			PurchaseDate: lot.PurchaseDate,
			Status:       stockStatus(lot.Quantity),
		})
	}
	for _, lot := range boxLots {
		items = append(items, models.StockReportItem{
			LotID:        lot.ID,
			Size:         lot.Size,
			Quantity:     lot.Quantity,
			PurchaseDate: lot.PurchaseDate,
			Status:       stockStatus(lot.Quantity),
		})
	}

	if err := s.views.SetJSON(ctx, cache.KeyStockReport, items, viewCacheTTL); err != nil {
		utils.LogError(err, "Failed to cache stock report")
	}
	return items, nil
}

func stockStatus(quantity int) string {
	switch {
	case quantity == 0:
		return "Out of Stock"
	case quantity < lowStockThreshold:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

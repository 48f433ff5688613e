package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza_pos_backend/internal/cache"
	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/repositories"
)

// memViewCache is an in-memory ViewCache so read-through behavior can be
// asserted without a redis instance.
type memViewCache struct {
	data map[string][]byte
}

func newMemViewCache() *memViewCache { return &memViewCache{data: map[string][]byte{}} }

func (c *memViewCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	payload, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dest)
}

func (c *memViewCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = payload
	return nil
}

func (c *memViewCache) Invalidate(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *memViewCache) InvalidatePrefix(_ context.Context, prefix string) error {
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}

type countingTxRepo struct {
	repositories.TransactionRepository
	transactions []models.Transaction
	calls        int
}

func (r *countingTxRepo) GetTransactions(_ models.TransactionFilters) ([]models.Transaction, int, error) {
	r.calls++
	return r.transactions, len(r.transactions), nil
}

type countingExpenseRepo struct {
	repositories.ExpenseRepository
	expenses []models.Expense
	calls    int
}

func (r *countingExpenseRepo) GetExpenses(_ models.ExpenseFilters) ([]models.Expense, int, error) {
	r.calls++
	return r.expenses, len(r.expenses), nil
}

func TestReportCacheKeyDistinguishesFilters(t *testing.T) {
	flavor := "pepperoni"
	size := models.SizeSmall
	params := models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31"}

	base := reportCacheKey(cache.KeySalesReport, params)
	params.Flavor = &flavor
	params.Size = &size
	filtered := reportCacheKey(cache.KeySalesReport, params)

	assert.NotEqual(t, base, filtered)
	assert.True(t, strings.HasPrefix(base, cache.KeySalesReport))
	assert.True(t, strings.HasPrefix(filtered, cache.KeySalesReport))
}

func TestGetSalesReportServedFromCacheOnSecondRead(t *testing.T) {
	unit := UnitPriceFor(models.SizeSmall, models.StateFrozen, false)
	txRepo := &countingTxRepo{transactions: []models.Transaction{
		{Date: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), Size: models.SizeSmall, Flavor: "pepperoni", Quantity: 2, LineTotal: LineTotal(unit, 2)},
		{Date: time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC), Size: models.SizeSmall, Flavor: "pepperoni", Quantity: 1, LineTotal: unit},
	}}
	views := newMemViewCache()
	svc := &reportService{txRepo: txRepo, views: views}
	params := models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31"}

	first, err := svc.GetSalesReport(params)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, txRepo.calls)

	second, err := svc.GetSalesReport(params)
	require.NoError(t, err)
	assert.Equal(t, 1, txRepo.calls, "second read must come from the cache")
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.Equal(t, first[i].TotalQuantity, second[i].TotalQuantity)
		assert.True(t, first[i].TotalSales.Equal(second[i].TotalSales))
	}
}

func TestGetSalesReportCachesPerFilterCombination(t *testing.T) {
	txRepo := &countingTxRepo{}
	views := newMemViewCache()
	svc := &reportService{txRepo: txRepo, views: views}

	_, err := svc.GetSalesReport(models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31"})
	require.NoError(t, err)

	flavor := "margherita"
	_, err = svc.GetSalesReport(models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31", Flavor: &flavor})
	require.NoError(t, err)

	assert.Equal(t, 2, txRepo.calls, "a different filter set is a different view")
	assert.Len(t, views.data, 2)
}

func TestGetExpenseReportServedFromCacheOnSecondRead(t *testing.T) {
	expenseRepo := &countingExpenseRepo{expenses: []models.Expense{
		{Category: models.ExpenseIngredients, Amount: decimal.NewFromInt(50000)},
		{Category: models.ExpenseRent, Amount: decimal.NewFromInt(200000)},
		{Category: models.ExpenseIngredients, Amount: decimal.NewFromInt(25000)},
	}}
	views := newMemViewCache()
	svc := &reportService{expenseRepo: expenseRepo, views: views}
	params := models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31"}

	first, err := svc.GetExpenseReport(params)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, models.ExpenseIngredients, first[0].Category)
	assert.True(t, decimal.NewFromInt(75000).Equal(first[0].TotalAmount))

	second, err := svc.GetExpenseReport(params)
	require.NoError(t, err)
	assert.Equal(t, 1, expenseRepo.calls, "second read must come from the cache")
	require.Len(t, second, 2)
	assert.True(t, first[0].TotalAmount.Equal(second[0].TotalAmount))
}

func TestInvalidatePrefixDropsParameterizedReportKeys(t *testing.T) {
	txRepo := &countingTxRepo{}
	views := newMemViewCache()
	svc := &reportService{txRepo: txRepo, views: views}

	flavor := "pepperoni"
	_, err := svc.GetSalesReport(models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31"})
	require.NoError(t, err)
	_, err = svc.GetSalesReport(models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31", Flavor: &flavor})
	require.NoError(t, err)
	require.Len(t, views.data, 2)

	require.NoError(t, views.InvalidatePrefix(context.Background(), cache.KeySalesReport))
	assert.Empty(t, views.data)

	// The next read recomputes.
	_, err = svc.GetSalesReport(models.ReportRequestParams{StartDate: "2025-03-01", EndDate: "2025-03-31"})
	require.NoError(t, err)
	assert.Equal(t, 3, txRepo.calls)
}

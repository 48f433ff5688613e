package services

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza_pos_backend/internal/cache"
	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/repositories"
)

// fakeStockRepo keeps both pools in memory and records every quantity write,
// so tests can assert exactly which lots a flow touched.
type fakeStockRepo struct {
	repositories.StockRepository
	pizzaLots   []models.PizzaStockLot
	boxLots     []models.BoxStockLot
	pizzaWrites map[int64]int
	boxWrites   map[int64]int
}

func newFakeStockRepo(pizzas []models.PizzaStockLot, boxes []models.BoxStockLot) *fakeStockRepo {
	return &fakeStockRepo{
		pizzaLots:   pizzas,
		boxLots:     boxes,
		pizzaWrites: map[int64]int{},
		boxWrites:   map[int64]int{},
	}
}

func (r *fakeStockRepo) GetPizzaLots(filters models.StockFilters) ([]models.PizzaStockLot, int, error) {
	lots := []models.PizzaStockLot{}
	for _, lot := range r.pizzaLots {
		if filters.InStock != nil && *filters.InStock && lot.Quantity <= 0 {
			continue
		}
		lots = append(lots, lot)
	}
	return lots, len(lots), nil
}

func (r *fakeStockRepo) GetBoxLots(filters models.StockFilters) ([]models.BoxStockLot, int, error) {
	lots := []models.BoxStockLot{}
	for _, lot := range r.boxLots {
		if filters.InStock != nil && *filters.InStock && lot.Quantity <= 0 {
			continue
		}
		lots = append(lots, lot)
	}
	return lots, len(lots), nil
}

func (r *fakeStockRepo) GetPizzaLotsForDeduction(_ repositories.SQLExecutor, flavor string, size models.PizzaSize) ([]models.PizzaStockLot, error) {
	lots := []models.PizzaStockLot{}
	for _, lot := range r.pizzaLots {
		if lot.Flavor == flavor && lot.Size == size && lot.Quantity > 0 {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (r *fakeStockRepo) GetBoxLotsForDeduction(_ repositories.SQLExecutor, size models.PizzaSize) ([]models.BoxStockLot, error) {
	lots := []models.BoxStockLot{}
	for _, lot := range r.boxLots {
		if lot.Size == size && lot.Quantity > 0 {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (r *fakeStockRepo) UpdatePizzaLotQuantity(_ repositories.SQLExecutor, id int64, newQuantity int) error {
	r.pizzaWrites[id] = newQuantity
	for i := range r.pizzaLots {
		if r.pizzaLots[i].ID == id {
			r.pizzaLots[i].Quantity = newQuantity
		}
	}
	return nil
}

func (r *fakeStockRepo) UpdateBoxLotQuantity(_ repositories.SQLExecutor, id int64, newQuantity int) error {
	r.boxWrites[id] = newQuantity
	for i := range r.boxLots {
		if r.boxLots[i].ID == id {
			r.boxLots[i].Quantity = newQuantity
		}
	}
	return nil
}

// fakeTxRepo keeps persisted rows and the period counter in memory.
type fakeTxRepo struct {
	repositories.TransactionRepository
	rows   []models.Transaction
	nextID int64
	seq    int64
}

func (r *fakeTxRepo) CreateTransaction(_ repositories.SQLExecutor, tx *models.Transaction) (int64, error) {
	r.nextID++
	tx.ID = r.nextID
	r.rows = append(r.rows, *tx)
	return tx.ID, nil
}

func (r *fakeTxRepo) GetTransactionByID(id int64) (*models.Transaction, error) {
	for _, row := range r.rows {
		if row.ID == id {
			found := row
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeTxRepo) GetTransactionsByNumber(number string) ([]models.Transaction, error) {
	rows := []models.Transaction{}
	for _, row := range r.rows {
		if row.TransactionNumber == number {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *fakeTxRepo) UpdateTransaction(_ repositories.SQLExecutor, tx *models.Transaction) error {
	for i := range r.rows {
		if r.rows[i].ID == tx.ID {
			r.rows[i] = *tx
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeTxRepo) DeleteTransaction(_ repositories.SQLExecutor, id int64) error {
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeTxRepo) NextSequence(_ repositories.SQLExecutor, _ string) (int64, error) {
	r.seq++
	return r.seq, nil
}

func newSaleServiceForFlow(t *testing.T, stock *fakeStockRepo, txs *fakeTxRepo) (*saleService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gen := &transactionNumberGenerator{
		txRepo: txs,
		prefix: "PZ",
		now:    func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	svc := &saleService{
		txRepo:    txs,
		stockRepo: stock,
		numbers:   gen,
		views:     cache.NoopViewCache{},
		db:        db,
	}
	return svc, mock
}

func committedRow(id int64, number string, quantity int, includeBox bool) models.Transaction {
	unit := UnitPriceFor(models.SizeSmall, models.StateFrozen, includeBox)
	return models.Transaction{
		ID:                id,
		Date:              time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Size:              models.SizeSmall,
		Flavor:            "pepperoni",
		Quantity:          quantity,
		State:             models.StateFrozen,
		IncludeBox:        includeBox,
		UnitPrice:         unit,
		LineTotal:         LineTotal(unit, quantity),
		TransactionNumber: number,
	}
}

func TestCommitSaleDeductsOldestLotsFirst(t *testing.T) {
	stock := newFakeStockRepo(
		[]models.PizzaStockLot{
			pizzaLot(1, "pepperoni", models.SizeSmall, 2),
			pizzaLot(2, "pepperoni", models.SizeSmall, 5),
		},
		[]models.BoxStockLot{boxLot(1, models.SizeSmall, 4)},
	)
	txs := &fakeTxRepo{}
	svc, mock := newSaleServiceForFlow(t, stock, txs)
	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.CommitSale(CommitSaleRequest{Lines: []SaleLineRequest{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 3, State: "frozen", IncludeBox: true},
	}})
	require.NoError(t, err)

	assert.Equal(t, "PZ25030001", result.TransactionNumber)
	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, "PZ25030001", row.TransactionNumber)
	require.NotNil(t, row.PizzaLotID)
	assert.Equal(t, int64(1), *row.PizzaLotID, "row points at the oldest lot it drew from")
	assert.True(t, decimal.NewFromInt(144000).Equal(result.Total))

	// Oldest lot drained, the spill lands on the younger one.
	assert.Equal(t, map[int64]int{1: 0, 2: 4}, stock.pizzaWrites)
	assert.Equal(t, map[int64]int{1: 1}, stock.boxWrites)
	require.Len(t, txs.rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitSaleShortageWritesNothing(t *testing.T) {
	stock := newFakeStockRepo(
		[]models.PizzaStockLot{pizzaLot(1, "pepperoni", models.SizeSmall, 1)},
		nil,
	)
	txs := &fakeTxRepo{}
	svc, mock := newSaleServiceForFlow(t, stock, txs)

	_, err := svc.CommitSale(CommitSaleRequest{Lines: []SaleLineRequest{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 2, State: "frozen"},
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStockShortage)

	assert.Empty(t, stock.pizzaWrites)
	assert.Empty(t, txs.rows)
	// The database transaction is never opened.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCheckoutQuantityIncreaseDeductsOnlyDelta(t *testing.T) {
	stock := newFakeStockRepo(
		[]models.PizzaStockLot{pizzaLot(1, "pepperoni", models.SizeSmall, 10)},
		nil,
	)
	txs := &fakeTxRepo{rows: []models.Transaction{committedRow(7, "PZ25030001", 2, false)}, nextID: 7}
	svc, mock := newSaleServiceForFlow(t, stock, txs)
	mock.ExpectBegin()
	mock.ExpectCommit()

	id := int64(7)
	result, err := svc.UpdateCheckout("PZ25030001", UpdateCheckoutRequest{Lines: []CheckoutLineEdit{
		{ID: &id, SaleLineRequest: SaleLineRequest{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 5, State: "frozen"}},
	}})
	require.NoError(t, err)

	// Editing 2 -> 5 owes 3 more units: the lot of 10 ends at 7.
	assert.Equal(t, map[int64]int{1: 7}, stock.pizzaWrites)
	assert.Empty(t, stock.boxWrites)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 5, result.Rows[0].Quantity)
	assert.Equal(t, 5, txs.rows[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCheckoutQuantityDecreaseRestoresNothing(t *testing.T) {
	stock := newFakeStockRepo(
		[]models.PizzaStockLot{pizzaLot(1, "pepperoni", models.SizeSmall, 3)},
		nil,
	)
	txs := &fakeTxRepo{rows: []models.Transaction{committedRow(7, "PZ25030001", 5, false)}, nextID: 7}
	svc, mock := newSaleServiceForFlow(t, stock, txs)
	mock.ExpectBegin()
	mock.ExpectCommit()

	id := int64(7)
	result, err := svc.UpdateCheckout("PZ25030001", UpdateCheckoutRequest{Lines: []CheckoutLineEdit{
		{ID: &id, SaleLineRequest: SaleLineRequest{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 2, State: "frozen"}},
	}})
	require.NoError(t, err)

	assert.Empty(t, stock.pizzaWrites, "downward edits never write the stock pools")
	assert.Empty(t, stock.boxWrites)
	assert.Equal(t, 3, stock.pizzaLots[0].Quantity)
	assert.Equal(t, 2, txs.rows[0].Quantity)
	assert.Equal(t, 1, len(result.Rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCheckoutTogglingBoxOnDeductsFullQuantity(t *testing.T) {
	stock := newFakeStockRepo(
		[]models.PizzaStockLot{pizzaLot(1, "pepperoni", models.SizeSmall, 3)},
		[]models.BoxStockLot{boxLot(1, models.SizeSmall, 5)},
	)
	txs := &fakeTxRepo{rows: []models.Transaction{committedRow(7, "PZ25030001", 2, false)}, nextID: 7}
	svc, mock := newSaleServiceForFlow(t, stock, txs)
	mock.ExpectBegin()
	mock.ExpectCommit()

	id := int64(7)
	result, err := svc.UpdateCheckout("PZ25030001", UpdateCheckoutRequest{Lines: []CheckoutLineEdit{
		{ID: &id, SaleLineRequest: SaleLineRequest{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 2, State: "frozen", IncludeBox: true}},
	}})
	require.NoError(t, err)

	// Both boxes of the row were handed out unrecorded; the toggle deducts them.
	assert.Empty(t, stock.pizzaWrites)
	assert.Equal(t, map[int64]int{1: 3}, stock.boxWrites)
	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0].IncludeBox)
	assert.True(t, UnitPriceFor(models.SizeSmall, models.StateFrozen, true).Equal(result.Rows[0].UnitPrice))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTransactionRowLeavesSiblingsAndStockAlone(t *testing.T) {
	stock := newFakeStockRepo(
		[]models.PizzaStockLot{pizzaLot(1, "pepperoni", models.SizeSmall, 4)},
		[]models.BoxStockLot{boxLot(1, models.SizeSmall, 4)},
	)
	txs := &fakeTxRepo{rows: []models.Transaction{
		committedRow(1, "PZ25030001", 1, true),
		committedRow(2, "PZ25030001", 2, false),
		committedRow(3, "PZ25030001", 1, false),
	}, nextID: 3}
	svc, mock := newSaleServiceForFlow(t, stock, txs)

	require.NoError(t, svc.DeleteTransactionRow(2))

	require.Len(t, txs.rows, 2)
	assert.Equal(t, int64(1), txs.rows[0].ID)
	assert.Equal(t, int64(3), txs.rows[1].ID)
	assert.Empty(t, stock.pizzaWrites, "deleting a row never restores stock")
	assert.Empty(t, stock.boxWrites)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionRow(t *testing.T) {
	txs := &fakeTxRepo{rows: []models.Transaction{committedRow(7, "PZ25030001", 2, false)}, nextID: 7}
	svc, _ := newSaleServiceForFlow(t, newFakeStockRepo(nil, nil), txs)

	row, err := svc.GetTransactionRow(7)
	require.NoError(t, err)
	assert.Equal(t, "PZ25030001", row.TransactionNumber)

	_, err = svc.GetTransactionRow(99)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pizza_pos_backend/internal/cache"
	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/repositories"
	"pizza_pos_backend/pkg/utils"
)

// Custom Errors
var (
	ErrValidation          = errors.New("validation error")
	ErrStockShortage       = errors.New("insufficient stock")
	ErrCheckoutNotFound    = errors.New("checkout not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ShortageError carries the structured shortage detail alongside the
// operator-facing message. It unwraps to ErrStockShortage so handlers can
// match it with errors.Is.
type ShortageError struct {
	Result *AvailabilityResult
}

func (e *ShortageError) Error() string {
	msgs := make([]string, 0, len(e.Result.Shortages))
	for _, s := range e.Result.Shortages {
		msgs = append(msgs, s.Message())
	}
	return "insufficient stock: " + strings.Join(msgs, "; ")
}

func (e *ShortageError) Unwrap() error { return ErrStockShortage }

// --- Data Transfer Objects (DTOs) ---

// SaleLineRequest is one line of a checkout as submitted by the UI. State is
// free text and quantity may be dirty; both are normalized before use.
type SaleLineRequest struct {
	Flavor     string           `json:"flavor"`
	Size       models.PizzaSize `json:"size"`
	Quantity   int              `json:"quantity"`
	State      string           `json:"state"`
	IncludeBox bool             `json:"include_box"`
	SaleDate   *time.Time       `json:"sale_date,omitempty"`
}

// SaleLine is a normalized line with its derived price fields. Prices come
// from the fixed price table, never from the request.
type SaleLine struct {
	Flavor     string           `json:"flavor"`
	Size       models.PizzaSize `json:"size"`
	Quantity   int              `json:"quantity"`
	State      models.ItemState `json:"state"`
	IncludeBox bool             `json:"include_box"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	LineTotal  decimal.Decimal  `json:"line_total"`
	SaleDate   *time.Time       `json:"sale_date,omitempty"`
}

// CommitSaleRequest is one checkout submission.
type CommitSaleRequest struct {
	Lines        []SaleLineRequest `json:"lines" binding:"required"`
	CustomerName *string           `json:"customer_name,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
}

// CheckoutLineEdit is one line of an edited checkout. A nil ID marks a line
// added during editing; it is appended under the original transaction number.
type CheckoutLineEdit struct {
	ID *int64 `json:"id,omitempty"`
	SaleLineRequest
}

// UpdateCheckoutRequest edits an already-committed checkout.
type UpdateCheckoutRequest struct {
	Lines []CheckoutLineEdit `json:"lines" binding:"required"`
}

// CommitResult reports a successful commit: the minted number and the
// persisted rows in insertion order, ready to hand to the receipt generator.
type CommitResult struct {
	TransactionNumber string               `json:"transaction_number"`
	Rows              []models.Transaction `json:"rows"`
	Total             decimal.Decimal      `json:"total"`
}

// --- SaleService Interface ---

// SaleService is the sale commit orchestrator: it validates checkout lines
// against the stock pools, mints the transaction number, persists one row
// per line and deducts stock FIFO, all inside one database transaction.
type SaleService interface {
	CommitSale(req CommitSaleRequest) (*CommitResult, error)
	UpdateCheckout(number string, req UpdateCheckoutRequest) (*CommitResult, error)
	DeleteTransactionRow(id int64) error
	GetTransactionRow(id int64) (*models.Transaction, error)
	GetCheckout(number string) ([]models.Transaction, error)
	GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error)
	CheckAvailabilityReport(lines []SaleLineRequest) (*AvailabilityResult, error)
}

type saleService struct {
	txRepo    repositories.TransactionRepository
	stockRepo repositories.StockRepository
	numbers   TransactionNumberGenerator
	views     cache.ViewCache
	db        *sql.DB // For managing transactions
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(
	txRepo repositories.TransactionRepository,
	stockRepo repositories.StockRepository,
	numbers TransactionNumberGenerator,
	views cache.ViewCache,
	db *sql.DB,
) SaleService {
	return &saleService{
		txRepo:    txRepo,
		stockRepo: stockRepo,
		numbers:   numbers,
		views:     views,
		db:        db,
	}
}

// --- Normalization ---

// stateSynonyms maps the free-text spellings the UI has historically sent
// onto the closed enum. Anything unrecognized defaults to frozen.
var stateSynonyms = map[string]models.ItemState{
	"frozen": models.StateFrozen,
	"fresh":  models.StateFrozen,
	"raw":    models.StateFrozen,
	"cooked": models.StateCooked,
	"baked":  models.StateCooked,
	"hot":    models.StateCooked,
	"ready":  models.StateCooked,
}

// ParseItemState normalizes free-text state input into the closed enum,
// matching case-insensitively against a small synonym set.
func ParseItemState(raw string) models.ItemState {
	if state, ok := stateSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return state
	}
	return models.StateFrozen
}

// NormalizeSaleLine coerces a request line into a valid SaleLine: quantity
// falls back to 1 when non-positive, state is parsed into the enum, and the
// price fields are derived from the price table. Normalization is
// idempotent: feeding a normalized line back through yields an equal line.
func NormalizeSaleLine(req SaleLineRequest) SaleLine {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	state := ParseItemState(req.State)
	size := models.PizzaSize(strings.ToLower(strings.TrimSpace(string(req.Size))))
	unitPrice := UnitPriceFor(size, state, req.IncludeBox)

	return SaleLine{
		Flavor:     strings.TrimSpace(req.Flavor),
		Size:       size,
		Quantity:   quantity,
		State:      state,
		IncludeBox: req.IncludeBox,
		UnitPrice:  unitPrice,
		LineTotal:  LineTotal(unitPrice, quantity),
		SaleDate:   req.SaleDate,
	}
}

func normalizeLines(reqs []SaleLineRequest) []SaleLine {
	lines := make([]SaleLine, 0, len(reqs))
	for _, req := range reqs {
		lines = append(lines, NormalizeSaleLine(req))
	}
	return lines
}

func validateLines(lines []SaleLine) error {
	for i, line := range lines {
		if line.Flavor == "" {
			return fmt.Errorf("%w: line %d has no flavor", ErrValidation, i+1)
		}
		if !line.Size.IsValid() {
			return fmt.Errorf("%w: line %d has unknown size %q", ErrValidation, i+1, line.Size)
		}
	}
	return nil
}

// --- FIFO deduction ---

// lotQuantity is the slice element the FIFO planner walks: a lot id and its
// current quantity, already ordered oldest purchase first.
type lotQuantity struct {
	ID       int64
	Quantity int
}

// lotDeduction is one planned write: set lot ID to NewQuantity.
type lotDeduction struct {
	ID          int64
	NewQuantity int
	Taken       int
}

// planFIFODeduction walks lots oldest-first, taking from each the minimum of
// its remaining quantity and the amount still owed. It returns the planned
// writes and any shortfall. A shortfall zeroes every lot but never plans a
// negative quantity; with the availability check run first it should be zero.
func planFIFODeduction(lots []lotQuantity, amount int) ([]lotDeduction, int) {
	plan := []lotDeduction{}
	remaining := amount
	for _, lot := range lots {
		if remaining <= 0 {
			break
		}
		if lot.Quantity <= 0 {
			continue
		}
		take := lot.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, lotDeduction{
			ID:          lot.ID,
			NewQuantity: lot.Quantity - take,
			Taken:       take,
		})
		remaining -= take
	}
	return plan, remaining
}

// deductPizzaStock re-reads the matching lots inside the transaction and
// applies the FIFO plan lot by lot, strictly sequentially: each lot's new
// quantity depends on how much the prior lots absorbed.
func (s *saleService) deductPizzaStock(executor repositories.SQLExecutor, flavor string, size models.PizzaSize, quantity int) (*int64, error) {
	lots, err := s.stockRepo.GetPizzaLotsForDeduction(executor, flavor, size)
	if err != nil {
		return nil, fmt.Errorf("failed to load pizza lots for deduction: %w", err)
	}

	refs := make([]lotQuantity, 0, len(lots))
	for _, lot := range lots {
		refs = append(refs, lotQuantity{ID: lot.ID, Quantity: lot.Quantity})
	}
	plan, shortfall := planFIFODeduction(refs, quantity)
	if shortfall > 0 {
		utils.LogError(fmt.Errorf("pizza stock for %s %s short by %d", size, flavor, shortfall),
			"Deduction exceeded available stock, draining lots to zero")
	}

	var firstLotID *int64
	for _, step := range plan {
		if err := s.stockRepo.UpdatePizzaLotQuantity(executor, step.ID, step.NewQuantity); err != nil {
			return nil, fmt.Errorf("failed to deduct pizza lot %d: %w", step.ID, err)
		}
		if firstLotID == nil {
			id := step.ID
			firstLotID = &id
		}
	}
	return firstLotID, nil
}

func (s *saleService) deductBoxStock(executor repositories.SQLExecutor, size models.PizzaSize, quantity int) error {
	lots, err := s.stockRepo.GetBoxLotsForDeduction(executor, size)
	if err != nil {
		return fmt.Errorf("failed to load box lots for deduction: %w", err)
	}

	refs := make([]lotQuantity, 0, len(lots))
	for _, lot := range lots {
		refs = append(refs, lotQuantity{ID: lot.ID, Quantity: lot.Quantity})
	}
	plan, shortfall := planFIFODeduction(refs, quantity)
	if shortfall > 0 {
		utils.LogError(fmt.Errorf("box stock for size %s short by %d", size, shortfall),
			"Deduction exceeded available stock, draining lots to zero")
	}

	for _, step := range plan {
		if err := s.stockRepo.UpdateBoxLotQuantity(executor, step.ID, step.NewQuantity); err != nil {
			return fmt.Errorf("failed to deduct box lot %d: %w", step.ID, err)
		}
	}
	return nil
}

// --- Method Implementations ---

func (s *saleService) CommitSale(req CommitSaleRequest) (*CommitResult, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: checkout has no lines", ErrValidation)
	}

	lines := normalizeLines(req.Lines)
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	if err := s.checkAvailability(lines, CheckFirst); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	number, err := s.numbers.Next(tx)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{TransactionNumber: number, Total: decimal.Zero}
	for _, line := range lines {
		row, err := s.persistAndDeductLine(tx, line, number, req.CustomerName, req.Notes)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, *row)
		result.Total = result.Total.Add(row.LineTotal)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	s.invalidateViews()
	utils.LogInfo("Checkout committed", map[string]interface{}{
		"transaction_number": number,
		"lines":              len(result.Rows),
		"total":              result.Total.String(),
	})
	return result, nil
}

// persistAndDeductLine writes one transaction row and runs FIFO deduction
// for it, pizza pool first, then the box pool when the line includes a box.
func (s *saleService) persistAndDeductLine(tx *sql.Tx, line SaleLine, number string, customerName, notes *string) (*models.Transaction, error) {
	lotID, err := s.deductPizzaStock(tx, line.Flavor, line.Size, line.Quantity)
	if err != nil {
		return nil, err
	}
	if line.IncludeBox {
		if err := s.deductBoxStock(tx, line.Size, line.Quantity); err != nil {
			return nil, err
		}
	}

	row := models.Transaction{
		Size:              line.Size,
		Flavor:            line.Flavor,
		Quantity:          line.Quantity,
		State:             line.State,
		IncludeBox:        line.IncludeBox,
		UnitPrice:         line.UnitPrice,
		LineTotal:         line.LineTotal,
		CustomerName:      customerName,
		Notes:             notes,
		TransactionNumber: number,
		PizzaLotID:        lotID,
	}
	if line.SaleDate != nil {
		row.Date = *line.SaleDate
	}
	if _, err := s.txRepo.CreateTransaction(tx, &row); err != nil {
		return nil, fmt.Errorf("failed to persist sale line (%s %s): %w", line.Size, line.Flavor, err)
	}
	return &row, nil
}

// checkAvailability loads in-stock snapshots of both pools and runs the
// pure checker over them.
func (s *saleService) checkAvailability(lines []SaleLine, mode CheckMode) error {
	result, err := s.availability(lines, mode)
	if err != nil {
		return err
	}
	if !result.OK() {
		return &ShortageError{Result: result}
	}
	return nil
}

func (s *saleService) availability(lines []SaleLine, mode CheckMode) (*AvailabilityResult, error) {
	inStock := true
	pizzaLots, _, err := s.stockRepo.GetPizzaLots(models.StockFilters{InStock: &inStock})
	if err != nil {
		return nil, fmt.Errorf("failed to load pizza stock: %w", err)
	}
	boxLots, _, err := s.stockRepo.GetBoxLots(models.StockFilters{InStock: &inStock})
	if err != nil {
		return nil, fmt.Errorf("failed to load box stock: %w", err)
	}
	return CheckAvailability(lines, pizzaLots, boxLots, mode), nil
}

func (s *saleService) UpdateCheckout(number string, req UpdateCheckoutRequest) (*CommitResult, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: edit has no lines", ErrValidation)
	}

	existing, err := s.txRepo.GetTransactionsByNumber(number)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout %s: %w", number, err)
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCheckoutNotFound, number)
	}
	byID := make(map[int64]models.Transaction, len(existing))
	for _, row := range existing {
		byID[row.ID] = row
	}

	// Split edits into updates of existing rows and fresh appends, and
	// collect the stock demand: only positive quantity deltas re-deduct.
	// Turning include_box on deducts boxes for the full row quantity: those
	// boxes were handed out at sale time but never recorded.
	type pendingUpdate struct {
		current  models.Transaction
		line     SaleLine
		delta    int
		boxDelta int
	}
	var updates []pendingUpdate
	var appends []SaleLine
	var demand []SaleLine

	for _, edit := range req.Lines {
		line := NormalizeSaleLine(edit.SaleLineRequest)
		if err := validateLines([]SaleLine{line}); err != nil {
			return nil, err
		}
		if edit.ID == nil {
			appends = append(appends, line)
			demand = append(demand, line)
			continue
		}
		current, ok := byID[*edit.ID]
		if !ok {
			return nil, fmt.Errorf("%w: row %d does not belong to checkout %s", ErrValidation, *edit.ID, number)
		}
		delta := line.Quantity - current.Quantity
		boxDelta := 0
		if line.IncludeBox {
			if !current.IncludeBox {
				boxDelta = line.Quantity
			} else if delta > 0 {
				boxDelta = delta
			}
		}
		updates = append(updates, pendingUpdate{current: current, line: line, delta: delta, boxDelta: boxDelta})
		if delta > 0 {
			deltaLine := line
			deltaLine.Quantity = delta
			demand = append(demand, deltaLine)
		}
	}

	if len(demand) > 0 {
		if err := s.checkAvailability(demand, CheckFirst); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	result := &CommitResult{TransactionNumber: number, Total: decimal.Zero}

	for _, u := range updates {
		if u.delta > 0 {
			if _, err := s.deductPizzaStock(tx, u.line.Flavor, u.line.Size, u.delta); err != nil {
				return nil, err
			}
		}
		if u.boxDelta > 0 {
			if err := s.deductBoxStock(tx, u.line.Size, u.boxDelta); err != nil {
				return nil, err
			}
		}
		// Quantity decreases do not restore stock; deletions and downward
		// edits are data-entry corrections, not reversals.
		row := u.current
		row.Size = u.line.Size
		row.Flavor = u.line.Flavor
		row.Quantity = u.line.Quantity
		row.State = u.line.State
		row.IncludeBox = u.line.IncludeBox
		row.UnitPrice = u.line.UnitPrice
		row.LineTotal = u.line.LineTotal
		if u.line.SaleDate != nil {
			row.Date = *u.line.SaleDate
		}
		if err := s.txRepo.UpdateTransaction(tx, &row); err != nil {
			return nil, fmt.Errorf("failed to update row %d of checkout %s: %w", row.ID, number, err)
		}
		result.Rows = append(result.Rows, row)
		result.Total = result.Total.Add(row.LineTotal)
	}

	customerName := existing[0].CustomerName
	notes := existing[0].Notes
	for _, line := range appends {
		row, err := s.persistAndDeductLine(tx, line, number, customerName, notes)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, *row)
		result.Total = result.Total.Add(row.LineTotal)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout edit: %w", err)
	}

	s.invalidateViews()
	utils.LogInfo("Checkout edited", map[string]interface{}{
		"transaction_number": number,
		"updated":            len(updates),
		"appended":           len(appends),
	})
	return result, nil
}

// DeleteTransactionRow removes a single row of a checkout. Sibling rows
// sharing the transaction number are untouched, and the stock the row
// deducted is deliberately not restored.
func (s *saleService) DeleteTransactionRow(id int64) error {
	err := s.txRepo.DeleteTransaction(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: row %d", ErrTransactionNotFound, id)
		}
		return fmt.Errorf("failed to delete transaction row %d: %w", id, err)
	}
	s.invalidateViews()
	return nil
}

// GetTransactionRow returns one persisted row by its id.
func (s *saleService) GetTransactionRow(id int64) (*models.Transaction, error) {
	row, err := s.txRepo.GetTransactionByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: row %d", ErrTransactionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get transaction row %d: %w", id, err)
	}
	return row, nil
}

func (s *saleService) GetCheckout(number string) ([]models.Transaction, error) {
	rows, err := s.txRepo.GetTransactionsByNumber(number)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout %s: %w", number, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCheckoutNotFound, number)
	}
	return rows, nil
}

func (s *saleService) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	transactions, totalCount, err := s.txRepo.GetTransactions(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, totalCount, nil
}

// CheckAvailabilityReport runs the checker in full-report mode, returning
// every shortage instead of stopping at the first.
func (s *saleService) CheckAvailabilityReport(reqs []SaleLineRequest) (*AvailabilityResult, error) {
	lines := normalizeLines(reqs)
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	return s.availability(lines, CheckAll)
}

func (s *saleService) invalidateViews() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.views.Invalidate(ctx, cache.KeyDashboardSummary, cache.KeyStockReport); err != nil {
		utils.LogError(err, "Failed to invalidate dashboard views")
	}
	if err := s.views.InvalidatePrefix(ctx, cache.KeySalesReport); err != nil {
		utils.LogError(err, "Failed to invalidate sales report views")
	}
}

package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza_pos_backend/internal/models"
)

func TestParseItemState(t *testing.T) {
	tests := []struct {
		raw  string
		want models.ItemState
	}{
		{"frozen", models.StateFrozen},
		{"Frozen", models.StateFrozen},
		{"  FRESH ", models.StateFrozen},
		{"raw", models.StateFrozen},
		{"cooked", models.StateCooked},
		{"Baked", models.StateCooked},
		{"HOT", models.StateCooked},
		{"ready", models.StateCooked},
		{"", models.StateFrozen},
		{"whatever", models.StateFrozen},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseItemState(tt.raw), "input %q", tt.raw)
	}
}

func TestNormalizeSaleLineQuantityFallback(t *testing.T) {
	for _, dirty := range []int{0, -3} {
		line := NormalizeSaleLine(SaleLineRequest{
			Flavor:   "pepperoni",
			Size:     models.SizeSmall,
			Quantity: dirty,
			State:    "frozen",
		})
		assert.Equal(t, 1, line.Quantity, "quantity %d should fall back to 1", dirty)
	}
}

func TestNormalizeSaleLineDerivesPrices(t *testing.T) {
	line := NormalizeSaleLine(SaleLineRequest{
		Flavor:     "  margherita ",
		Size:       models.PizzaSize(" Medium "),
		Quantity:   2,
		State:      "baked",
		IncludeBox: true,
	})

	assert.Equal(t, "margherita", line.Flavor)
	assert.Equal(t, models.SizeMedium, line.Size)
	assert.Equal(t, models.StateCooked, line.State)
	assert.True(t, decimal.NewFromInt(76000).Equal(line.UnitPrice))
	assert.True(t, decimal.NewFromInt(152000).Equal(line.LineTotal))
}

func TestNormalizeSaleLineIdempotent(t *testing.T) {
	first := NormalizeSaleLine(SaleLineRequest{
		Flavor:   "pepperoni",
		Size:     models.SizeSmall,
		Quantity: 0,
		State:    "fresh",
	})
	second := NormalizeSaleLine(SaleLineRequest{
		Flavor:     first.Flavor,
		Size:       first.Size,
		Quantity:   first.Quantity,
		State:      string(first.State),
		IncludeBox: first.IncludeBox,
	})
	assert.Equal(t, first, second)
}

// applyDeductionPlan mirrors what the repository writes do, so the planner
// can be exercised over consecutive checkouts.
func applyDeductionPlan(lots []lotQuantity, plan []lotDeduction) []lotQuantity {
	byID := map[int64]int{}
	for _, step := range plan {
		byID[step.ID] = step.NewQuantity
	}
	out := make([]lotQuantity, len(lots))
	for i, lot := range lots {
		out[i] = lot
		if q, ok := byID[lot.ID]; ok {
			out[i].Quantity = q
		}
	}
	return out
}

func TestPlanFIFODeductionOldestFirst(t *testing.T) {
	lots := []lotQuantity{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 5}}

	plan, shortfall := planFIFODeduction(lots, 3)
	require.Zero(t, shortfall)
	require.Len(t, plan, 2)

	assert.Equal(t, lotDeduction{ID: 1, NewQuantity: 0, Taken: 2}, plan[0])
	assert.Equal(t, lotDeduction{ID: 2, NewQuantity: 4, Taken: 1}, plan[1])
}

func TestPlanFIFODeductionSingleLotSuffices(t *testing.T) {
	lots := []lotQuantity{{ID: 1, Quantity: 5}, {ID: 2, Quantity: 5}}

	plan, shortfall := planFIFODeduction(lots, 3)
	require.Zero(t, shortfall)
	require.Len(t, plan, 1, "younger lot must be untouched")
	assert.Equal(t, lotDeduction{ID: 1, NewQuantity: 2, Taken: 3}, plan[0])
}

func TestPlanFIFODeductionConservation(t *testing.T) {
	lots := []lotQuantity{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}, {ID: 3, Quantity: 4}}

	plan, shortfall := planFIFODeduction(lots, 5)
	require.Zero(t, shortfall)

	taken := 0
	for _, step := range plan {
		taken += step.Taken
		assert.GreaterOrEqual(t, step.NewQuantity, 0)
	}
	assert.Equal(t, 5, taken, "units deducted must equal units sold")
}

func TestPlanFIFODeductionOverDemandDrainsToZero(t *testing.T) {
	lots := []lotQuantity{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}}

	plan, shortfall := planFIFODeduction(lots, 10)
	assert.Equal(t, 7, shortfall)
	require.Len(t, plan, 2)
	for _, step := range plan {
		assert.Zero(t, step.NewQuantity, "over-demand drains lots to zero, never below")
	}
}

func TestPlanFIFODeductionSkipsEmptyLots(t *testing.T) {
	lots := []lotQuantity{{ID: 1, Quantity: 0}, {ID: 2, Quantity: 3}}

	plan, shortfall := planFIFODeduction(lots, 2)
	require.Zero(t, shortfall)
	require.Len(t, plan, 1)
	assert.Equal(t, int64(2), plan[0].ID)
}

func TestPlanFIFODeductionSequentialCheckouts(t *testing.T) {
	// Two lots of 2 and 1; selling 2 then 1 empties them oldest-first.
	lots := []lotQuantity{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}}

	plan, shortfall := planFIFODeduction(lots, 2)
	require.Zero(t, shortfall)
	require.Len(t, plan, 1)
	assert.Equal(t, int64(1), plan[0].ID)
	lots = applyDeductionPlan(lots, plan)

	plan, shortfall = planFIFODeduction(lots, 1)
	require.Zero(t, shortfall)
	require.Len(t, plan, 1)
	assert.Equal(t, int64(2), plan[0].ID)
	lots = applyDeductionPlan(lots, plan)

	for _, lot := range lots {
		assert.Zero(t, lot.Quantity)
	}

	// A third checkout finds nothing left.
	plan, shortfall = planFIFODeduction(lots, 1)
	assert.Empty(t, plan)
	assert.Equal(t, 1, shortfall)
}

func TestShortageErrorUnwraps(t *testing.T) {
	err := &ShortageError{Result: &AvailabilityResult{Shortages: []Shortage{
		{Pool: PoolPizza, Flavor: "pepperoni", Size: models.SizeSmall, Requested: 3, Available: 1},
	}}}

	assert.ErrorIs(t, err, ErrStockShortage)
	assert.Contains(t, err.Error(), "not enough small pepperoni pizzas")
}

func TestCommitSaleRejectsEmptyCheckout(t *testing.T) {
	svc := &saleService{}
	_, err := svc.CommitSale(CommitSaleRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateCheckoutRejectsEmptyEdit(t *testing.T) {
	svc := &saleService{}
	_, err := svc.UpdateCheckout("PZ25030001", UpdateCheckoutRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

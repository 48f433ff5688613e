package services

import (
	"github.com/shopspring/decimal"

	"pizza_pos_backend/internal/models"
)

// priceKey identifies one cell of the fixed selling-price table.
type priceKey struct {
	Size       models.PizzaSize
	State      models.ItemState
	IncludeBox bool
}

// sellingPrices is the outlet's fixed price table. The unit selling price of
// a line is a pure function of (size, state, includeBox); it is never set by
// the operator for standard flavors.
var sellingPrices = map[priceKey]decimal.Decimal{
	{models.SizeSmall, models.StateFrozen, false}:  decimal.NewFromInt(45000),
	{models.SizeSmall, models.StateFrozen, true}:   decimal.NewFromInt(48000),
	{models.SizeSmall, models.StateCooked, false}:  decimal.NewFromInt(50000),
	{models.SizeSmall, models.StateCooked, true}:   decimal.NewFromInt(53000),
	{models.SizeMedium, models.StateFrozen, false}: decimal.NewFromInt(65000),
	{models.SizeMedium, models.StateFrozen, true}:  decimal.NewFromInt(69000),
	{models.SizeMedium, models.StateCooked, false}: decimal.NewFromInt(72000),
	{models.SizeMedium, models.StateCooked, true}:  decimal.NewFromInt(76000),
}

// UnitPriceFor returns the selling price for one pizza of the given size and
// state, with or without a box. Unknown combinations price at zero, the safe
// fallback for malformed input.
func UnitPriceFor(size models.PizzaSize, state models.ItemState, includeBox bool) decimal.Decimal {
	price, ok := sellingPrices[priceKey{Size: size, State: state, IncludeBox: includeBox}]
	if !ok {
		return decimal.Zero
	}
	return price
}

// LineTotal computes unit price times quantity for a sale line.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pizza_pos_backend/internal/models"
)

func TestUnitPriceFor(t *testing.T) {
	tests := []struct {
		name       string
		size       models.PizzaSize
		state      models.ItemState
		includeBox bool
		want       int64
	}{
		{"small frozen", models.SizeSmall, models.StateFrozen, false, 45000},
		{"small frozen with box", models.SizeSmall, models.StateFrozen, true, 48000},
		{"small cooked", models.SizeSmall, models.StateCooked, false, 50000},
		{"medium frozen", models.SizeMedium, models.StateFrozen, false, 65000},
		{"medium cooked with box", models.SizeMedium, models.StateCooked, true, 76000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitPriceFor(tt.size, tt.state, tt.includeBox)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestUnitPriceForUnknownCombination(t *testing.T) {
	got := UnitPriceFor(models.PizzaSize("family"), models.StateFrozen, false)
	assert.True(t, got.IsZero())
}

func TestLineTotal(t *testing.T) {
	unit := decimal.NewFromInt(45000)
	assert.True(t, decimal.NewFromInt(135000).Equal(LineTotal(unit, 3)))
	assert.True(t, decimal.NewFromInt(45000).Equal(LineTotal(unit, 1)))
}

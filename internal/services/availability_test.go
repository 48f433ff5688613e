package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza_pos_backend/internal/models"
)

func pizzaLot(id int64, flavor string, size models.PizzaSize, quantity int) models.PizzaStockLot {
	return models.PizzaStockLot{
		ID:           id,
		Flavor:       flavor,
		Size:         size,
		Quantity:     quantity,
		PurchaseDate: time.Date(2025, 3, int(id), 0, 0, 0, 0, time.UTC),
	}
}

func boxLot(id int64, size models.PizzaSize, quantity int) models.BoxStockLot {
	return models.BoxStockLot{
		ID:           id,
		Size:         size,
		Quantity:     quantity,
		PurchaseDate: time.Date(2025, 3, int(id), 0, 0, 0, 0, time.UTC),
	}
}

func TestCheckAvailabilityAllInStock(t *testing.T) {
	pizzas := []models.PizzaStockLot{
		pizzaLot(1, "pepperoni", models.SizeSmall, 3),
		pizzaLot(2, "pepperoni", models.SizeSmall, 2),
	}
	boxes := []models.BoxStockLot{boxLot(1, models.SizeSmall, 5)}

	lines := []SaleLine{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 4, IncludeBox: true},
	}

	result := CheckAvailability(lines, pizzas, boxes, CheckFirst)
	assert.True(t, result.OK())
	assert.Empty(t, result.Shortages)
}

func TestCheckAvailabilityShortageWithAlternatives(t *testing.T) {
	pizzas := []models.PizzaStockLot{
		pizzaLot(1, "pepperoni", models.SizeSmall, 1),
		pizzaLot(2, "margherita", models.SizeSmall, 4),
		pizzaLot(3, "hawaiian", models.SizeSmall, 2),
		pizzaLot(4, "margherita", models.SizeMedium, 9),
	}

	lines := []SaleLine{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 3},
	}

	result := CheckAvailability(lines, pizzas, nil, CheckFirst)
	require.False(t, result.OK())
	require.Len(t, result.Shortages, 1)

	shortage := result.Shortages[0]
	assert.Equal(t, PoolPizza, shortage.Pool)
	assert.Equal(t, "pepperoni", shortage.Flavor)
	assert.Equal(t, 3, shortage.Requested)
	assert.Equal(t, 1, shortage.Available)
	// Only same-size flavors with remaining stock, sorted.
	assert.Equal(t, []string{"hawaiian", "margherita"}, shortage.Alternatives)
	assert.Contains(t, shortage.Message(), "not enough small pepperoni pizzas")
	assert.Contains(t, shortage.Message(), "hawaiian, margherita")
}

func TestCheckAvailabilityCumulativeDemand(t *testing.T) {
	pizzas := []models.PizzaStockLot{
		pizzaLot(1, "pepperoni", models.SizeSmall, 3),
	}

	// Each line fits alone, but together they overdraw the pool.
	lines := []SaleLine{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 2},
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 2},
	}

	result := CheckAvailability(lines, pizzas, nil, CheckFirst)
	require.Len(t, result.Shortages, 1)
	assert.Equal(t, 2, result.Shortages[0].Requested)
	assert.Equal(t, 1, result.Shortages[0].Available)
}

func TestCheckAvailabilitySecondLineFindsNothingLeft(t *testing.T) {
	// 3 units spread over two lots; the first 3-unit line takes them all,
	// an identical second line sees zero remaining.
	pizzas := []models.PizzaStockLot{
		pizzaLot(1, "pepperoni", models.SizeSmall, 2),
		pizzaLot(2, "pepperoni", models.SizeSmall, 1),
	}

	lines := []SaleLine{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 3},
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 3},
	}

	result := CheckAvailability(lines, pizzas, nil, CheckFirst)
	require.Len(t, result.Shortages, 1)
	assert.Equal(t, 3, result.Shortages[0].Requested)
	assert.Equal(t, 0, result.Shortages[0].Available)
}

func TestCheckAvailabilityBoxShortage(t *testing.T) {
	pizzas := []models.PizzaStockLot{
		pizzaLot(1, "pepperoni", models.SizeMedium, 5),
	}
	boxes := []models.BoxStockLot{boxLot(1, models.SizeMedium, 1)}

	lines := []SaleLine{
		{Flavor: "pepperoni", Size: models.SizeMedium, Quantity: 2, IncludeBox: true},
	}

	result := CheckAvailability(lines, pizzas, boxes, CheckFirst)
	require.Len(t, result.Shortages, 1)
	shortage := result.Shortages[0]
	assert.Equal(t, PoolBox, shortage.Pool)
	assert.Empty(t, shortage.Flavor)
	assert.Equal(t, 1, shortage.Available)
	assert.Contains(t, shortage.Message(), "not enough medium boxes")
}

func TestCheckAvailabilityCheckAllCollectsEverything(t *testing.T) {
	pizzas := []models.PizzaStockLot{
		pizzaLot(1, "pepperoni", models.SizeSmall, 1),
	}

	lines := []SaleLine{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 2},
		{Flavor: "margherita", Size: models.SizeSmall, Quantity: 1},
		{Flavor: "pepperoni", Size: models.SizeMedium, Quantity: 1},
	}

	first := CheckAvailability(lines, pizzas, nil, CheckFirst)
	assert.Len(t, first.Shortages, 1)

	all := CheckAvailability(lines, pizzas, nil, CheckAll)
	assert.Len(t, all.Shortages, 3)
}

func TestCheckAvailabilityIsPure(t *testing.T) {
	pizzas := []models.PizzaStockLot{
		pizzaLot(1, "pepperoni", models.SizeSmall, 3),
	}
	lines := []SaleLine{
		{Flavor: "pepperoni", Size: models.SizeSmall, Quantity: 2},
	}

	first := CheckAvailability(lines, pizzas, nil, CheckFirst)
	second := CheckAvailability(lines, pizzas, nil, CheckFirst)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, pizzas[0].Quantity, "checker must not mutate the snapshot")
}

package services

import (
	"fmt"
	"sort"
	"strings"

	"pizza_pos_backend/internal/models"
)

// StockPool names which of the two stock pools a shortage refers to.
type StockPool string

const (
	PoolPizza StockPool = "pizza"
	PoolBox   StockPool = "box"
)

// Shortage describes one sale line the stock pools cannot satisfy. It names
// the requested item, how much is actually available, and which other
// flavors of the same size are in stock so the operator can offer a
// substitute straight away.
type Shortage struct {
	Pool         StockPool        `json:"pool"`
	Flavor       string           `json:"flavor,omitempty"` // empty for box shortages
	Size         models.PizzaSize `json:"size"`
	Requested    int              `json:"requested"`
	Available    int              `json:"available"`
	Alternatives []string         `json:"alternatives,omitempty"` // other in-stock flavors, same size
}

// Message renders the operator-facing description of the shortage.
func (s Shortage) Message() string {
	var b strings.Builder
	if s.Pool == PoolBox {
		fmt.Fprintf(&b, "not enough %s boxes: requested %d, available %d", s.Size, s.Requested, s.Available)
		return b.String()
	}
	fmt.Fprintf(&b, "not enough %s %s pizzas: requested %d, available %d", s.Size, s.Flavor, s.Requested, s.Available)
	if len(s.Alternatives) > 0 {
		fmt.Fprintf(&b, " (in stock for %s: %s)", s.Size, strings.Join(s.Alternatives, ", "))
	}
	return b.String()
}

// AvailabilityResult is the outcome of checking a set of sale lines against
// the current stock pools.
type AvailabilityResult struct {
	Shortages []Shortage `json:"shortages"`
}

// OK reports whether every checked line can be satisfied.
func (r *AvailabilityResult) OK() bool {
	return len(r.Shortages) == 0
}

// CheckMode controls whether the checker stops at the first shortage
// (the checkout flow reports one error at a time) or collects them all
// (the reporting flow wants the complete picture).
type CheckMode int

const (
	CheckFirst CheckMode = iota
	CheckAll
)

// CheckAvailability validates sale lines against in-memory snapshots of the
// two stock pools. It is a pure read: no lot is mutated and calling it twice
// with the same inputs yields the same result.
//
// Demand is tracked cumulatively across the lines of one call, so two lines
// draining the same (flavor, size) cannot both pass against the same units.
func CheckAvailability(lines []SaleLine, pizzaLots []models.PizzaStockLot, boxLots []models.BoxStockLot, mode CheckMode) *AvailabilityResult {
	result := &AvailabilityResult{}

	pizzaAvail := map[pizzaPoolKey]int{}
	for _, lot := range pizzaLots {
		pizzaAvail[pizzaPoolKey{lot.Flavor, lot.Size}] += lot.Quantity
	}
	boxAvail := map[models.PizzaSize]int{}
	for _, lot := range boxLots {
		boxAvail[lot.Size] += lot.Quantity
	}

	for _, line := range lines {
		key := pizzaPoolKey{line.Flavor, line.Size}
		available := pizzaAvail[key]
		if available < line.Quantity {
			result.Shortages = append(result.Shortages, Shortage{
				Pool:         PoolPizza,
				Flavor:       line.Flavor,
				Size:         line.Size,
				Requested:    line.Quantity,
				Available:    available,
				Alternatives: inStockFlavors(pizzaAvail, line.Size, line.Flavor),
			})
			if mode == CheckFirst {
				return result
			}
			continue
		}
		pizzaAvail[key] = available - line.Quantity

		if line.IncludeBox {
			boxAvailable := boxAvail[line.Size]
			if boxAvailable < line.Quantity {
				result.Shortages = append(result.Shortages, Shortage{
					Pool:      PoolBox,
					Size:      line.Size,
					Requested: line.Quantity,
					Available: boxAvailable,
				})
				if mode == CheckFirst {
					return result
				}
				continue
			}
			boxAvail[line.Size] = boxAvailable - line.Quantity
		}
	}
	return result
}

type pizzaPoolKey struct {
	Flavor string
	Size   models.PizzaSize
}

// inStockFlavors lists the other flavors with remaining stock for a size,
// sorted for stable output.
func inStockFlavors(avail map[pizzaPoolKey]int, size models.PizzaSize, exclude string) []string {
	var flavors []string
	for key, qty := range avail {
		if key.Size == size && key.Flavor != exclude && qty > 0 {
			flavors = append(flavors, key.Flavor)
		}
	}
	sort.Strings(flavors)
	return flavors
}

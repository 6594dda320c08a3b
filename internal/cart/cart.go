package cart

import (
	"sync"

	"scanbridge/internal/domain"
)

// Cart holds the open lines for one terminal. Lines are keyed by SKU: a new
// scan of a product already in the cart merges into its line (quantity is
// additive, price override and lot metadata are last-scan-wins) so the same
// product never appears twice.
type Cart struct {
	mu         sync.Mutex
	terminalID string
	lines      []domain.CartLine
}

func New(terminalID string) *Cart {
	return &Cart{terminalID: terminalID}
}

func (c *Cart) TerminalID() string {
	return c.terminalID
}

// Apply executes a resolved cart command and reports the mutation that
// happened.
func (c *Cart) Apply(cmd domain.CartCommand) domain.CartMutation {
	unitPrice := cmd.Product.PriceCents
	overridden := false
	if cmd.PriceOverrideCents != nil {
		unitPrice = *cmd.PriceOverrideCents
		overridden = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].SKU != cmd.Product.SKU {
			continue
		}
		c.lines[i].Quantity += cmd.Quantity
		c.lines[i].UnitPriceCents = unitPrice
		c.lines[i].PriceOverridden = overridden
		if cmd.Lot != nil {
			c.lines[i].Lot = cmd.Lot
		}
		return mutationFor(domain.CartActionMerge, c.lines[i])
	}

	line := domain.CartLine{
		SKU:             cmd.Product.SKU,
		Name:            cmd.Product.Name,
		Quantity:        cmd.Quantity,
		UnitPriceCents:  unitPrice,
		PriceOverridden: overridden,
		SoldByWeight:    cmd.Product.SoldByWeight,
		Lot:             cmd.Lot,
	}
	c.lines = append(c.lines, line)
	return mutationFor(domain.CartActionCreate, line)
}

// SetQuantity overwrites the quantity of an existing line, the effect of a
// quantity answer to a multiplier prompt.
func (c *Cart) SetQuantity(sku string, quantity float64) (domain.CartMutation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].SKU != sku {
			continue
		}
		if quantity < 1 {
			quantity = 1
		}
		c.lines[i].Quantity = quantity
		return mutationFor(domain.CartActionUpdate, c.lines[i]), true
	}
	return domain.CartMutation{}, false
}

// Lines returns a copy of the current cart lines.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

func mutationFor(action string, line domain.CartLine) domain.CartMutation {
	return domain.CartMutation{
		Action:          action,
		SKU:             line.SKU,
		Name:            line.Name,
		Quantity:        line.Quantity,
		UnitPriceCents:  line.UnitPriceCents,
		PriceOverridden: line.PriceOverridden,
		Lot:             line.Lot,
	}
}

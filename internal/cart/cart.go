// Package cart holds the shopper's cart on the client side. The server never
// stores carts; a Cart is passed explicitly into checkout, and the totals it
// computes are only a preview that the server re-validates.
package cart

import (
	"github.com/go-faster/errors"

	"farmdirect/internal/models"
	"farmdirect/internal/pricing"
	"farmdirect/internal/services"
)

// MaxQuantity is the largest quantity of a single product in a cart.
const MaxQuantity = 99

var (
	// ErrQuantityLimit is returned when a line would exceed MaxQuantity.
	ErrQuantityLimit = errors.New("maximum quantity is 99")
	// ErrInvalidQuantity is returned when adding a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNotInCart is returned when updating a product the cart does not hold.
	ErrNotInCart = errors.New("product is not in the cart")
)

// Cart is an ordered list of cart lines, one per product.
type Cart struct {
	items []models.CartItem
}

// New returns a cart holding items.
func New(items ...models.CartItem) *Cart {
	c := &Cart{}
	c.items = append(c.items, items...)
	return c
}

func (c *Cart) index(productID int) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of p into the cart, merging with an existing line.
func (c *Cart) Add(p models.Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if i := c.index(p.ID); i >= 0 {
		if c.items[i].Quantity+qty > MaxQuantity {
			return ErrQuantityLimit
		}
		c.items[i].Quantity += qty
		return nil
	}
	if qty > MaxQuantity {
		return ErrQuantityLimit
	}
	c.items = append(c.items, models.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Unit:      p.Unit,
		Image:     p.Image,
		Quantity:  qty,
	})
	return nil
}

// UpdateQuantity sets the quantity of a line. A quantity below 1 removes it.
func (c *Cart) UpdateQuantity(productID, qty int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrNotInCart
	}
	if qty < 1 {
		c.Remove(productID)
		return nil
	}
	if qty > MaxQuantity {
		return ErrQuantityLimit
	}
	c.items[i].Quantity = qty
	return nil
}

// Remove drops the line for productID, if any.
func (c *Cart) Remove(productID int) {
	if i := c.index(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() { c.items = nil }

// Items returns a copy of the cart lines.
func (c *Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Totals previews the order totals for the current cart.
func (c *Cart) Totals(calc *pricing.Calculator) pricing.Totals {
	return calc.Compute(pricing.CartLines(c.items))
}

// Checkout builds the order placement request for this cart. The previewed
// total travels as the client amount so the server can detect stale prices.
func (c *Cart) Checkout(phone string, address models.Address, method models.PaymentMethod, calc *pricing.Calculator) services.PlaceOrderRequest {
	total := c.Totals(calc).Total
	return services.PlaceOrderRequest{
		Phone:         phone,
		Items:         c.Items(),
		Address:       address,
		PaymentMethod: string(method),
		Amount:        &total,
	}
}

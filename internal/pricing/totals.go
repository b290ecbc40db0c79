package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmdirect/internal/models"
)

// Line is a priced quantity.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Totals is the price breakdown of a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Delivery decimal.Decimal
	Discount models.Discount
	Total    decimal.Decimal
	// Clamped is set when the discount exceeded subtotal plus delivery and
	// the total was floored at zero.
	Clamped bool
}

// Calculator composes the subtotal, the flat delivery fee and the discount
// policy.
type Calculator struct {
	policy      *Policy
	deliveryFee decimal.Decimal
	logger      *zap.Logger
}

// NewCalculator creates a Calculator. deliveryFee is charged whenever the
// subtotal is positive.
func NewCalculator(policy *Policy, deliveryFee decimal.Decimal, logger *zap.Logger) (*Calculator, error) {
	if policy == nil {
		return nil, errors.New("discount policy is required")
	}
	if deliveryFee.IsNegative() {
		return nil, errors.Errorf("delivery fee must not be negative, got %s", deliveryFee)
	}
	if !InPaise(deliveryFee) {
		return nil, errors.Errorf("delivery fee must be a whole number of paise, got %s", deliveryFee)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{policy: policy, deliveryFee: deliveryFee, logger: logger}, nil
}

// Compute returns the breakdown for lines. Unit prices are rounded to paise
// before summing, so every component is a whole number of paise. It has no
// side effects besides a warning log when the total had to be clamped.
func (c *Calculator) Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(RoundPaise(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	delivery := decimal.Zero
	if subtotal.IsPositive() {
		delivery = c.deliveryFee
	}

	discount := c.policy.Discount(subtotal)
	total := subtotal.Add(delivery).Sub(discount.Amount)

	t := Totals{
		Subtotal: subtotal,
		Delivery: delivery,
		Discount: discount,
		Total:    total.Round(2),
	}
	if total.IsNegative() {
		t.Total = decimal.Zero
		t.Clamped = true
		c.logger.Warn("Discount exceeds order value, total clamped to zero; check discount tier configuration",
			zap.String("subtotal", subtotal.String()),
			zap.String("discount", discount.Amount.String()),
			zap.String("label", discount.Label),
		)
	}
	return t
}

// RoundPaise rounds an amount to two decimal places.
func RoundPaise(amount decimal.Decimal) decimal.Decimal { return amount.Round(2) }

// InPaise reports whether amount has no fraction of a paisa.
func InPaise(amount decimal.Decimal) bool { return amount.Equal(RoundPaise(amount)) }

// CartLines converts cart items into priced lines.
func CartLines(items []models.CartItem) []Line {
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{Price: it.Price, Quantity: it.Quantity}
	}
	return lines
}

// OrderLines converts order items into priced lines.
func OrderLines(items []models.OrderItem) []Line {
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{Price: it.UnitPrice, Quantity: it.Quantity}
	}
	return lines
}

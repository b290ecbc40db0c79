// Package pricing computes cart totals: subtotal, flat delivery fee and the
// festive discount tier. All arithmetic uses fixed-point decimals.
package pricing

import (
	"fmt"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"farmdirect/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Tier is one band of the discount table. A tier applies to subtotals at or
// above MinSubtotal; the highest matching tier wins. The discount amount is
// FlatAmount plus Percentage percent of the subtotal.
type Tier struct {
	MinSubtotal decimal.Decimal
	Percentage  int
	FlatAmount  decimal.Decimal
	Label       string
}

func (t Tier) amount(subtotal decimal.Decimal) decimal.Decimal {
	pct := subtotal.Mul(decimal.NewFromInt(int64(t.Percentage))).Div(hundred)
	return t.FlatAmount.Add(pct).Round(2)
}

func (t Tier) label() string {
	if t.Label != "" {
		return t.Label
	}
	if t.Percentage > 0 {
		return fmt.Sprintf("%d%% off", t.Percentage)
	}
	return fmt.Sprintf("₹%s off", t.FlatAmount.StringFixed(2))
}

// Policy maps a subtotal to a discount. It holds no mutable state.
type Policy struct {
	tiers []Tier
}

// DefaultTiers is the festive discount table used when none is configured.
func DefaultTiers() []Tier {
	return []Tier{
		{MinSubtotal: decimal.NewFromInt(1000), FlatAmount: decimal.NewFromInt(100), Label: "Festive offer: ₹100 off"},
		{MinSubtotal: decimal.NewFromInt(2500), Percentage: 10, Label: "Festive 10% off"},
		{MinSubtotal: decimal.NewFromInt(5000), Percentage: 15, Label: "Festive 15% off"},
		{MinSubtotal: decimal.NewFromInt(10000), Percentage: 20, Label: "Festive 20% off"},
	}
}

// NewPolicy validates the tier table. It rejects negative values,
// percentages above 100, duplicate thresholds, and tables where crossing a
// threshold would lower the discount.
func NewPolicy(tiers []Tier) (*Policy, error) {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinSubtotal.LessThan(sorted[j].MinSubtotal)
	})

	for i, t := range sorted {
		if t.MinSubtotal.IsNegative() {
			return nil, errors.Errorf("discount tier %d: negative minimum subtotal %s", i, t.MinSubtotal)
		}
		if t.FlatAmount.IsNegative() {
			return nil, errors.Errorf("discount tier %d: negative flat amount %s", i, t.FlatAmount)
		}
		if t.Percentage < 0 || t.Percentage > 100 {
			return nil, errors.Errorf("discount tier %d: percentage %d out of range", i, t.Percentage)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.MinSubtotal.Equal(t.MinSubtotal) {
			return nil, errors.Errorf("discount tiers: duplicate minimum subtotal %s", t.MinSubtotal)
		}
		// The lower tier's amount just below the boundary must not exceed
		// what the upper tier grants at the boundary.
		if t.amount(t.MinSubtotal).LessThan(prev.amount(t.MinSubtotal)) {
			return nil, errors.Errorf("discount tiers: discount drops when crossing %s", t.MinSubtotal)
		}
	}
	return &Policy{tiers: sorted}, nil
}

// Tiers returns a copy of the validated table in ascending order.
func (p *Policy) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// Discount returns the discount for subtotal. Subtotals below the lowest
// threshold (and negative subtotals) get no discount.
func (p *Policy) Discount(subtotal decimal.Decimal) models.Discount {
	for i := len(p.tiers) - 1; i >= 0; i-- {
		t := p.tiers[i]
		if subtotal.GreaterThanOrEqual(t.MinSubtotal) && !subtotal.IsNegative() {
			return models.Discount{
				Amount:     t.amount(subtotal),
				Percentage: t.Percentage,
				Label:      t.label(),
			}
		}
	}
	return models.Discount{Amount: decimal.Zero}
}

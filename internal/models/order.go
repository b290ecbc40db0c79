package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var statusTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseOrderStatus accepts only the four known statuses, matched exactly.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := statusTransitions[st]
	return st, ok
}

// CanTransitionTo reports whether an order in status s may move to next.
// Re-applying the current status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		_, known := statusTransitions[s]
		return known
	}
	return statusTransitions[s][next]
}

// PaymentMethod is how the customer settles the order. UPI payments are
// confirmed manually by the customer; there is no gateway.
type PaymentMethod string

const (
	PaymentCOD PaymentMethod = "cod"
	PaymentUPI PaymentMethod = "upi"
)

// Address is the delivery address captured at checkout. It is copied into the
// order and never changes afterwards.
type Address struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,mobile_in"`
	Line1   string `json:"line1" validate:"required"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,pincode_in"`
}

// Discount is the festive reduction applied to an order.
type Discount struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage int             `json:"percentage"`
	Label      string          `json:"label"`
}

// OrderItem represents a single line of an order, priced at order time.
type OrderItem struct {
	OrderID     string          `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// LineTotal is UnitPrice * Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a placed customer order.
// TotalAmount == Subtotal + DeliveryFee - Discount.Amount, floored at zero.
type Order struct {
	OrderID       string          `json:"order_id"`
	UserPhone     string          `json:"user_phone"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Discount      Discount        `json:"discount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Address       Address         `json:"address"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CartItem is a line of the client-held cart as submitted at checkout.
type CartItem struct {
	ProductID int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit,omitempty"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

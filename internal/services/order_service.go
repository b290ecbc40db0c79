package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
	"farmdirect/internal/pricing"
	"farmdirect/internal/repositories"
	"farmdirect/internal/validation"
)

// Routing keys of the order events.
const (
	RoutingKeyOrderPlaced        = "order.placed"
	RoutingKeyOrderStatusChanged = "order.status_changed"
)

// MaxItemQuantity bounds the quantity of a single order line.
const MaxItemQuantity = 99

// Publisher delivers order events. Implemented by the RabbitMQ client.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the body of an order event.
type OrderEvent struct {
	Event          string           `json:"event"`
	OrderID        string           `json:"orderId"`
	UserPhone      string           `json:"userPhone,omitempty"`
	Status         string           `json:"status"`
	PreviousStatus string           `json:"previousStatus,omitempty"`
	Total          *decimal.Decimal `json:"total,omitempty"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

// PlaceOrderRequest is a checkout submission. Amount is the total the client
// computed, if it sent one.
type PlaceOrderRequest struct {
	Phone         string
	Items         []models.CartItem
	Address       models.Address
	PaymentMethod string
	Amount        *decimal.Decimal
}

// NewOrderID returns an identifier of the form ORD<unix millis>-<8 hex>.
// The random suffix keeps IDs unique within the same millisecond.
func NewOrderID(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("ORD%d-%s", now.UnixMilli(), strings.ToUpper(hex.EncodeToString(u[:4])))
}

// OrderOption configures an OrderService.
type OrderOption func(*OrderService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// WithIDGenerator overrides order ID generation.
func WithIDGenerator(gen func(time.Time) string) OrderOption {
	return func(s *OrderService) { s.newID = gen }
}

// WithValidator shares a validator built by validation.New.
func WithValidator(v *validator.Validate) OrderOption {
	return func(s *OrderService) { s.validate = v }
}

// WithCatalogVerification controls whether submitted items are re-priced from
// the catalog.
func WithCatalogVerification(on bool) OrderOption {
	return func(s *OrderService) { s.verifyPrices = on }
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	calc         *pricing.Calculator
	publisher    Publisher
	logger       *zap.Logger
	validate     *validator.Validate
	verifyPrices bool
	now          func() time.Time
	newID        func(time.Time) string
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, calc *pricing.Calculator, publisher Publisher, logger *zap.Logger, opts ...OrderOption) *OrderService {
	s := &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		calc:         calc,
		publisher:    publisher,
		logger:       logger,
		validate:     validation.New(),
		verifyPrices: true,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        NewOrderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func trimAddress(a models.Address) models.Address {
	return models.Address{
		Name:    strings.TrimSpace(a.Name),
		Phone:   strings.TrimSpace(a.Phone),
		Line1:   strings.TrimSpace(a.Line1),
		Line2:   strings.TrimSpace(a.Line2),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
	}
}

func parsePaymentMethod(s string) (models.PaymentMethod, bool) {
	switch m := models.PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return models.PaymentCOD, true
	case models.PaymentCOD, models.PaymentUPI:
		return m, true
	}
	return "", false
}

// checkRequest runs the input checks in their fixed order; the first
// failure wins.
func (s *OrderService) checkRequest(req PlaceOrderRequest, addr models.Address) (models.PaymentMethod, error) {
	if len(req.Items) == 0 {
		return "", apperr.Validation("empty_cart", "Your cart is empty")
	}

	var addrErrs validator.ValidationErrors
	if err := s.validate.Struct(addr); err != nil && !errors.As(err, &addrErrs) {
		return "", invalidInput(err)
	}
	if hasTag(addrErrs, "required") {
		return "", apperr.Validation("incomplete_address", "Please fill in all required address fields")
	}
	if !validation.IsMobile(strings.TrimSpace(req.Phone)) || hasTag(addrErrs, validation.TagMobile) {
		return "", apperr.Validation("invalid_phone", "Please enter a valid 10-digit mobile number")
	}
	if hasTag(addrErrs, validation.TagPincode) {
		return "", apperr.Validation("invalid_pincode", "Please enter a valid 6-digit pincode")
	}

	for _, it := range req.Items {
		if it.Quantity < 1 || it.Quantity > MaxItemQuantity {
			return "", apperr.Validation("invalid_quantity", fmt.Sprintf("Quantity must be between 1 and %d", MaxItemQuantity))
		}
		if it.Price.IsNegative() || !pricing.InPaise(it.Price) {
			return "", apperr.Validation("invalid_price", "Item price must be a non-negative amount in whole paise")
		}
	}
	method, ok := parsePaymentMethod(req.PaymentMethod)
	if !ok {
		return "", apperr.Validation("invalid_payment_method", "Payment method must be cod or upi")
	}
	return method, nil
}

// priceItems turns cart lines into order lines, taking name and price from
// the catalog when verification is on.
func (s *OrderService) priceItems(ctx context.Context, items []models.CartItem) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		line := models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.Name,
			UnitPrice:   it.Price,
			Quantity:    it.Quantity,
		}
		if s.verifyPrices {
			p, err := s.productRepo.GetByID(ctx, it.ProductID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					return nil, apperr.Validation("unknown_product", fmt.Sprintf("Product %d is not in the catalog", it.ProductID))
				}
				return nil, err
			}
			line.ProductName = p.Name
			line.UnitPrice = pricing.RoundPaise(p.Price)
		}
		out = append(out, line)
	}
	return out, nil
}

// PlaceOrder validates a checkout, recomputes its totals and stores the
// order atomically.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	addr := trimAddress(req.Address)
	method, err := s.checkRequest(req, addr)
	if err != nil {
		s.logger.Debug("order rejected", zap.String("code", apperr.CodeOf(err)))
		return nil, err
	}

	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totals := s.calc.Compute(pricing.OrderLines(items))
	if req.Amount != nil && !req.Amount.Round(2).Equal(totals.Total) {
		return nil, apperr.Validation("amount_mismatch",
			fmt.Sprintf("Order total is ₹%s, please review your cart", totals.Total.StringFixed(2)))
	}

	now := s.now()
	order := &models.Order{
		OrderID:       s.newID(now),
		UserPhone:     strings.TrimSpace(req.Phone),
		Items:         items,
		Subtotal:      totals.Subtotal,
		DeliveryFee:   totals.Delivery,
		Discount:      totals.Discount,
		TotalAmount:   totals.Total,
		Status:        models.StatusProcessing,
		PaymentMethod: method,
		Address:       addr,
		CreatedAt:     now,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.OrderID
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.String("phone", order.UserPhone),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	s.publish(RoutingKeyOrderPlaced, OrderEvent{
		Event:      RoutingKeyOrderPlaced,
		OrderID:    order.OrderID,
		UserPhone:  order.UserPhone,
		Status:     string(order.Status),
		Total:      &order.TotalAmount,
		OccurredAt: now,
	})
	return order, nil
}

// ListOrdersForUser returns the user's orders newest first. A phone that
// cannot belong to an account has no orders.
func (s *OrderService) ListOrdersForUser(ctx context.Context, phone string) ([]models.Order, error) {
	phone = strings.TrimSpace(phone)
	if !validation.IsMobile(phone) {
		return []models.Order{}, nil
	}
	return s.orderRepo.ListByUserPhone(ctx, phone)
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

// UpdateOrderStatus moves an order along its lifecycle.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) (models.OrderStatus, error) {
	next, ok := models.ParseOrderStatus(strings.TrimSpace(status))
	if !ok {
		return "", apperr.Validation("invalid_status",
			"Status must be one of Processing, Shipped, Delivered, Cancelled")
	}

	previous, err := s.orderRepo.UpdateStatus(ctx, orderID, next)
	if err != nil {
		return "", err
	}
	if previous == next {
		return next, nil
	}

	s.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
	)
	s.publish(RoutingKeyOrderStatusChanged, OrderEvent{
		Event:          RoutingKeyOrderStatusChanged,
		OrderID:        orderID,
		Status:         string(next),
		PreviousStatus: string(previous),
		OccurredAt:     s.now(),
	})
	return next, nil
}

// publish never fails the caller; the order is already stored.
func (s *OrderService) publish(routingKey string, event OrderEvent) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("encode order event", zap.String("order_id", event.OrderID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		s.logger.Warn("publish order event",
			zap.String("routing_key", routingKey),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

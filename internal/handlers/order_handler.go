package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmdirect/internal/models"
	"farmdirect/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandlePlaceOrder)
	orderRoutes.Get("/:phone", h.HandleGetOrderHistory)
	orderRoutes.Patch("/:orderId/status", h.HandleUpdateOrderStatus)
}

// AddressRequest is the delivery address of a checkout. The phone may be
// sent as either phone or addressPhone.
type AddressRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressPhone string `json:"addressPhone"`
	Line1        string `json:"line1"`
	Line2        string `json:"line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// PlaceOrderRequest represents the request body of a checkout.
type PlaceOrderRequest struct {
	Phone         string            `json:"phone"`
	Items         []models.CartItem `json:"items"`
	Amount        *decimal.Decimal  `json:"amount"`
	PaymentMethod string            `json:"paymentMethod"`
	Address       AddressRequest    `json:"address"`
}

func (r AddressRequest) toModel() models.Address {
	phone := r.Phone
	if phone == "" {
		phone = r.AddressPhone
	}
	return models.Address{
		Name:    r.Name,
		Phone:   phone,
		Line1:   r.Line1,
		Line2:   r.Line2,
		City:    r.City,
		State:   r.State,
		Pincode: r.Pincode,
	}
}

type discountResponse struct {
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
	Label      string  `json:"label"`
}

func toDiscountResponse(d models.Discount) discountResponse {
	return discountResponse{
		Amount:     d.Amount.InexactFloat64(),
		Percentage: d.Percentage,
		Label:      d.Label,
	}
}

type orderItemResponse struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type orderResponse struct {
	OrderID       string              `json:"orderId"`
	Date          string              `json:"date"`
	CreatedAt     time.Time           `json:"createdAt"`
	Items         []orderItemResponse `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	DeliveryFee   float64             `json:"deliveryFee"`
	Discount      discountResponse    `json:"discount"`
	Amount        float64             `json:"amount"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"paymentMethod"`
	Address       models.Address      `json:"address"`
}

func toOrderResponse(o models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:       it.ProductID,
			Name:     it.ProductName,
			Price:    it.UnitPrice.InexactFloat64(),
			Quantity: it.Quantity,
		})
	}
	return orderResponse{
		OrderID:       o.OrderID,
		Date:          o.CreatedAt.Format(time.DateOnly),
		CreatedAt:     o.CreatedAt,
		Items:         items,
		Subtotal:      o.Subtotal.InexactFloat64(),
		DeliveryFee:   o.DeliveryFee.InexactFloat64(),
		Discount:      toDiscountResponse(o.Discount),
		Amount:        o.TotalAmount.InexactFloat64(),
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Address:       o.Address,
	}
}

// HandlePlaceOrder validates and stores a checkout.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, h.logger, err)
	}

	order, err := h.service.PlaceOrder(c.UserContext(), services.PlaceOrderRequest{
		Phone:         req.Phone,
		Items:         req.Items,
		Address:       req.Address.toModel(),
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Order placed successfully!",
		"orderId":     order.OrderID,
		"subtotal":    order.Subtotal.InexactFloat64(),
		"deliveryFee": order.DeliveryFee.InexactFloat64(),
		"discount":    toDiscountResponse(order.Discount),
		"total":       order.TotalAmount.InexactFloat64(),
	})
}

// HandleGetOrderHistory lists a user's orders newest first.
func (h *OrderHandler) HandleGetOrderHistory(c *fiber.Ctx) error {
	orders, err := h.service.ListOrdersForUser(c.UserContext(), c.Params("phone"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  out,
	})
}

// HandleUpdateOrderStatus moves an order to a new status and returns the
// stored order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, h.logger, err)
	}

	status, err := h.service.UpdateOrderStatus(c.UserContext(), orderID, body.Status)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	order, err := h.service.GetOrder(c.UserContext(), orderID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated",
		"orderId": orderID,
		"status":  string(status),
		"order":   toOrderResponse(*order),
	})
}

package services_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
	"farmdirect/internal/pricing"
	"farmdirect/internal/services"
)

var fixedNow = time.Date(2025, 10, 20, 9, 30, 0, 0, time.UTC)

type orderFixture struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	publisher *MockPublisher
	service   *services.OrderService
}

func newOrderFixture(t *testing.T, logger *zap.Logger, opts ...services.OrderOption) *orderFixture {
	t.Helper()
	policy, err := pricing.NewPolicy(pricing.DefaultTiers())
	require.NoError(t, err)
	calc, err := pricing.NewCalculator(policy, decimal.NewFromInt(50), logger)
	require.NoError(t, err)

	f := &orderFixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		publisher: new(MockPublisher),
	}
	opts = append([]services.OrderOption{
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIDGenerator(func(time.Time) string { return "ORD1760952600000-ABCD1234" }),
	}, opts...)
	f.service = services.NewOrderService(f.orders, f.products, calc, f.publisher, logger, opts...)
	return f
}

func validAddress() models.Address {
	return models.Address{
		Name:    "Asha Patil",
		Phone:   "9876543210",
		Line1:   "12 Farm Road",
		City:    "Pune",
		State:   "Maharashtra",
		Pincode: "411001",
	}
}

func validRequest() services.PlaceOrderRequest {
	return services.PlaceOrderRequest{
		Phone: "9876543210",
		Items: []models.CartItem{
			{ProductID: 1, Name: "Tomatoes", Price: decimal.NewFromInt(600), Quantity: 2},
		},
		Address:       validAddress(),
		PaymentMethod: "cod",
	}
}

func TestPlaceOrder_ValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*services.PlaceOrderRequest)
		code   string
	}{
		{"empty cart wins over bad address", func(r *services.PlaceOrderRequest) {
			r.Items = nil
			r.Address.Pincode = "1"
		}, "empty_cart"},
		{"incomplete address wins over bad pincode", func(r *services.PlaceOrderRequest) {
			r.Address.City = "  "
			r.Address.Pincode = "1"
		}, "incomplete_address"},
		{"missing pincode is incomplete", func(r *services.PlaceOrderRequest) {
			r.Address.Pincode = ""
		}, "incomplete_address"},
		{"bad account phone wins over bad pincode", func(r *services.PlaceOrderRequest) {
			r.Phone = "12345"
			r.Address.Pincode = "1234"
		}, "invalid_phone"},
		{"bad address phone", func(r *services.PlaceOrderRequest) {
			r.Address.Phone = "5876543210"
		}, "invalid_phone"},
		{"five digit pincode", func(r *services.PlaceOrderRequest) {
			r.Address.Pincode = "1234"
		}, "invalid_pincode"},
		{"zero quantity", func(r *services.PlaceOrderRequest) {
			r.Items[0].Quantity = 0
		}, "invalid_quantity"},
		{"quantity over limit", func(r *services.PlaceOrderRequest) {
			r.Items[0].Quantity = 100
		}, "invalid_quantity"},
		{"negative price", func(r *services.PlaceOrderRequest) {
			r.Items[0].Price = decimal.NewFromInt(-1)
		}, "invalid_price"},
		{"fraction of a paisa", func(r *services.PlaceOrderRequest) {
			r.Items[0].Price = decimal.RequireFromString("10.555")
		}, "invalid_price"},
		{"unknown payment method", func(r *services.PlaceOrderRequest) {
			r.PaymentMethod = "card"
		}, "invalid_payment_method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t, zaptest.NewLogger(t))
			req := validRequest()
			tt.mutate(&req)

			order, err := f.service.PlaceOrder(context.Background(), req)

			assert.Nil(t, order)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)
			assert.Equal(t, tt.code, apperr.CodeOf(err))
			f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t))
	f.products.On("GetByID", mock.Anything, 1).
		Return(&models.Product{ID: 1, Name: "Tomatoes", Price: decimal.NewFromInt(600), Unit: "kg"}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	f.publisher.On("Publish", services.RoutingKeyOrderPlaced, mock.MatchedBy(func(body []byte) bool {
		var ev services.OrderEvent
		return json.Unmarshal(body, &ev) == nil && ev.OrderID == "ORD1760952600000-ABCD1234" && ev.Status == "Processing"
	})).Return(nil).Once()

	req := validRequest()
	req.PaymentMethod = ""
	order, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "ORD1760952600000-ABCD1234", order.OrderID)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.Equal(t, fixedNow, order.CreatedAt)
	assert.True(t, decimal.NewFromInt(1200).Equal(order.Subtotal))
	assert.True(t, decimal.NewFromInt(100).Equal(order.Discount.Amount))
	assert.True(t, decimal.NewFromInt(1150).Equal(order.TotalAmount), order.TotalAmount.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, order.OrderID, order.Items[0].OrderID)
	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestPlaceOrder_RepricesFromCatalog(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t))
	f.products.On("GetByID", mock.Anything, 1).
		Return(&models.Product{ID: 1, Name: "Heirloom Tomatoes", Price: decimal.NewFromInt(80), Unit: "kg"}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.Items[0].Price = decimal.NewFromInt(1)
	order, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Heirloom Tomatoes", order.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(80).Equal(order.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(210).Equal(order.TotalAmount), order.TotalAmount.String())
}

func TestPlaceOrder_SubPaiseCatalogPriceIsRounded(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t))
	f.products.On("GetByID", mock.Anything, 1).
		Return(&models.Product{ID: 1, Name: "Saffron", Price: decimal.RequireFromString("10.555"), Unit: "g"}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.Items[0].Price = decimal.RequireFromString("10.56")
	req.Items[0].Quantity = 1
	order, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.56").Equal(order.Items[0].UnitPrice), order.Items[0].UnitPrice.String())
	assert.True(t, decimal.RequireFromString("10.56").Equal(order.Subtotal), order.Subtotal.String())
	assert.True(t, decimal.RequireFromString("60.56").Equal(order.TotalAmount), order.TotalAmount.String())
	sum := order.Subtotal.Add(order.DeliveryFee).Sub(order.Discount.Amount)
	assert.True(t, sum.Equal(order.TotalAmount), "%s != %s", sum, order.TotalAmount)
}

func TestPlaceOrder_SubPaisePriceRejectedWithoutVerification(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t), services.WithCatalogVerification(false))

	req := validRequest()
	req.Items[0].Price = decimal.RequireFromString("10.555")
	_, err := f.service.PlaceOrder(context.Background(), req)

	assert.Equal(t, "invalid_price", apperr.CodeOf(err))
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t))
	f.products.On("GetByID", mock.Anything, 1).Return(nil, apperr.NotFound("product_not_found", "Product 1 not found")).Once()

	_, err := f.service.PlaceOrder(context.Background(), validRequest())

	assert.Equal(t, "unknown_product", apperr.CodeOf(err))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_WithoutCatalogVerification(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t), services.WithCatalogVerification(false))
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.Items = []models.CartItem{
		{ProductID: 1, Name: "Tomatoes", Price: decimal.NewFromInt(100), Quantity: 2},
		{ProductID: 2, Name: "Spinach", Price: decimal.NewFromInt(50), Quantity: 1},
	}
	order, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(order.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(order.DeliveryFee))
	assert.True(t, decimal.Zero.Equal(order.Discount.Amount))
	assert.True(t, decimal.NewFromInt(300).Equal(order.TotalAmount))
	f.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_AmountMismatch(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t), services.WithCatalogVerification(false))

	req := validRequest()
	stale := decimal.NewFromInt(1250)
	req.Amount = &stale
	_, err := f.service.PlaceOrder(context.Background(), req)

	assert.Equal(t, "amount_mismatch", apperr.CodeOf(err))
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_MatchingAmountAccepted(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t), services.WithCatalogVerification(false))
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	amount := decimal.RequireFromString("1150.00")
	req.Amount = &amount
	_, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
}

func TestPlaceOrder_PersistenceFailure(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t), services.WithCatalogVerification(false))
	f.orders.On("Create", mock.Anything, mock.Anything).
		Return(apperr.Persistence("create order", errors.New("connection reset"))).Once()

	_, err := f.service.PlaceOrder(context.Background(), validRequest())

	assert.True(t, apperr.Is(err, apperr.KindPersistence), "%v", err)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPlaceOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newOrderFixture(t, zap.New(core), services.WithCatalogVerification(false))
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", services.RoutingKeyOrderPlaced, mock.Anything).Return(errors.New("channel closed")).Once()

	order, err := f.service.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, 1, logs.FilterMessage("publish order event").Len())
}

func TestPlaceOrder_NilPublisher(t *testing.T) {
	policy, err := pricing.NewPolicy(pricing.DefaultTiers())
	require.NoError(t, err)
	calc, err := pricing.NewCalculator(policy, decimal.NewFromInt(50), nil)
	require.NoError(t, err)
	orders := new(MockOrderRepository)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	service := services.NewOrderService(orders, new(MockProductRepository), calc, nil, zaptest.NewLogger(t),
		services.WithCatalogVerification(false))
	_, err = service.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
}

func TestNewOrderID(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD\d{13}-[0-9A-F]{8}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := services.NewOrderID(fixedNow)
		require.Regexp(t, pattern, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestListOrdersForUser(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t))
	f.orders.On("ListByUserPhone", mock.Anything, "9876543210").
		Return([]models.Order{{OrderID: "ORD2"}, {OrderID: "ORD1"}}, nil).Once()

	orders, err := f.service.ListOrdersForUser(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = f.service.ListOrdersForUser(context.Background(), "98765")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	f.orders.AssertExpectations(t)
	f.orders.AssertNumberOfCalls(t, "ListByUserPhone", 1)
}

func TestGetOrder(t *testing.T) {
	f := newOrderFixture(t, zaptest.NewLogger(t))
	f.orders.On("GetByID", mock.Anything, "ORD1").
		Return(&models.Order{OrderID: "ORD1", Status: models.StatusShipped}, nil).Once()
	f.orders.On("GetByID", mock.Anything, "ORD404").
		Return(nil, apperr.NotFound("order_not_found", "Order ORD404 not found")).Once()

	order, err := f.service.GetOrder(context.Background(), "ORD1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, order.Status)

	_, err = f.service.GetOrder(context.Background(), "ORD404")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	f.orders.AssertExpectations(t)
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("invalid status", func(t *testing.T) {
		f := newOrderFixture(t, zaptest.NewLogger(t))

		_, err := f.service.UpdateOrderStatus(context.Background(), "ORD1", "Returned")

		assert.Equal(t, "invalid_status", apperr.CodeOf(err))
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transition publishes event", func(t *testing.T) {
		f := newOrderFixture(t, zaptest.NewLogger(t))
		f.orders.On("UpdateStatus", mock.Anything, "ORD1", models.StatusShipped).Return(models.StatusProcessing, nil).Once()
		f.publisher.On("Publish", services.RoutingKeyOrderStatusChanged, mock.MatchedBy(func(body []byte) bool {
			var ev services.OrderEvent
			return json.Unmarshal(body, &ev) == nil && ev.PreviousStatus == "Processing" && ev.Status == "Shipped"
		})).Return(nil).Once()

		status, err := f.service.UpdateOrderStatus(context.Background(), "ORD1", "Shipped")

		require.NoError(t, err)
		assert.Equal(t, models.StatusShipped, status)
		f.publisher.AssertExpectations(t)
	})

	t.Run("same status is silent", func(t *testing.T) {
		f := newOrderFixture(t, zaptest.NewLogger(t))
		f.orders.On("UpdateStatus", mock.Anything, "ORD1", models.StatusShipped).Return(models.StatusShipped, nil).Once()

		_, err := f.service.UpdateOrderStatus(context.Background(), "ORD1", "Shipped")

		require.NoError(t, err)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("repository errors pass through", func(t *testing.T) {
		f := newOrderFixture(t, zaptest.NewLogger(t))
		f.orders.On("UpdateStatus", mock.Anything, "ORD404", models.StatusCancelled).
			Return(models.OrderStatus(""), apperr.NotFound("order_not_found", "Order ORD404 not found")).Once()

		_, err := f.service.UpdateOrderStatus(context.Background(), "ORD404", "Cancelled")

		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

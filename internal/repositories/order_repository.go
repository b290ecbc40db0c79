package repositories

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create stores the order header and all of its items atomically. An
	// order without items is rejected.
	Create(ctx context.Context, order *models.Order) error
	// ListByUserPhone returns the user's orders newest first, items included.
	ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error)
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	// UpdateStatus moves an order to status if the transition is legal and
	// returns the status it had before.
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.OrderStatus, error)
}

func orderNotFound(orderID string) error {
	return apperr.NotFound("order_not_found", fmt.Sprintf("Order %s not found", orderID))
}

func emptyOrder(orderID string) error {
	return apperr.Validation("empty_order", fmt.Sprintf("Order %s has no items", orderID))
}

func illegalTransition(from, to models.OrderStatus) error {
	return apperr.Validation("illegal_transition", fmt.Sprintf("Cannot change order status from %s to %s", from, to))
}

func statusRace(orderID string) error {
	return apperr.Conflict("status_changed", fmt.Sprintf("Order %s changed status concurrently, retry", orderID))
}

// persistenceError keeps taxonomy errors raised inside a transaction and
// wraps everything else as a store failure.
func persistenceError(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Persistence(op, err)
}

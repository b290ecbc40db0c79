package repositories

import (
	"context"
	"slices"
	"sort"
	"sync"

	"farmdirect/internal/apperr"
	"farmdirect/internal/models"
)

const ordersFile = "orders.json"

// JSONOrderRepository keeps orders in orders.json, grouped by user phone.
type JSONOrderRepository struct {
	store  *fileStore
	orders map[string][]models.Order
	mu     sync.RWMutex
}

func newJSONOrderRepository(store *fileStore) (*JSONOrderRepository, error) {
	orders := make(map[string][]models.Order)
	if err := store.read(ordersFile, &orders); err != nil {
		return nil, apperr.Persistence("load orders", err)
	}
	return &JSONOrderRepository{store: store, orders: orders}, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// commit writes next to disk and only then makes it visible.
func (r *JSONOrderRepository) commit(op string, next map[string][]models.Order) error {
	if err := r.store.write(ordersFile, next); err != nil {
		return apperr.Persistence(op, err)
	}
	r.orders = next
	return nil
}

func (r *JSONOrderRepository) snapshot() map[string][]models.Order {
	next := make(map[string][]models.Order, len(r.orders)+1)
	for phone, list := range r.orders {
		next[phone] = list
	}
	return next
}

// Create appends the order to the user's list. Header and items are written
// in a single document, so either both are stored or neither is.
func (r *JSONOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return apperr.Persistence("create order", err)
	}
	if len(order.Items) == 0 {
		return emptyOrder(order.OrderID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneOrder(*order)
	for i := range stored.Items {
		stored.Items[i].OrderID = stored.OrderID
	}

	next := r.snapshot()
	next[order.UserPhone] = append(slices.Clone(r.orders[order.UserPhone]), stored)
	return r.commit("create order", next)
}

// ListByUserPhone returns the user's orders newest first.
func (r *JSONOrderRepository) ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Persistence("list orders", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.orders[phone]
	out := make([]models.Order, 0, len(list))
	for _, o := range list {
		out = append(out, cloneOrder(o))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].OrderID > out[j].OrderID
	})
	return out, nil
}

func (r *JSONOrderRepository) find(orderID string) (string, int) {
	for phone, list := range r.orders {
		for i := range list {
			if list[i].OrderID == orderID {
				return phone, i
			}
		}
	}
	return "", -1
}

// GetByID returns an order by its ID.
func (r *JSONOrderRepository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Persistence("get order", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	phone, i := r.find(orderID)
	if i < 0 {
		return nil, orderNotFound(orderID)
	}
	o := cloneOrder(r.orders[phone][i])
	return &o, nil
}

// UpdateStatus applies a legal status transition.
func (r *JSONOrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.OrderStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Persistence("update order status", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	phone, i := r.find(orderID)
	if i < 0 {
		return "", orderNotFound(orderID)
	}
	previous := r.orders[phone][i].Status
	if !previous.CanTransitionTo(status) {
		return "", illegalTransition(previous, status)
	}
	if previous == status {
		return previous, nil
	}

	next := r.snapshot()
	list := slices.Clone(r.orders[phone])
	list[i].Status = status
	next[phone] = list
	if err := r.commit("update order status", next); err != nil {
		return "", err
	}
	return previous, nil
}

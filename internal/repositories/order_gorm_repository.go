package repositories

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"farmdirect/internal/models"
)

// orderRecord is the row layout of the orders table. The delivery address is
// flattened into columns so it stays fixed once the order is placed.
type orderRecord struct {
	OrderID            string            `gorm:"primaryKey;type:varchar(40)"`
	UserPhone          string            `gorm:"type:varchar(10);not null;index"`
	Subtotal           decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	DeliveryFee        decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	DiscountAmount     decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	DiscountPercentage int               `gorm:"not null;default:0"`
	DiscountLabel      string            `gorm:"type:varchar(255)"`
	TotalAmount        decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Status             string            `gorm:"type:varchar(20);not null;index"`
	PaymentMethod      string            `gorm:"type:varchar(10);not null"`
	DeliveryName       string            `gorm:"type:varchar(255);not null"`
	DeliveryPhone      string            `gorm:"type:varchar(10);not null"`
	AddressLine1       string            `gorm:"column:address_line1;type:varchar(500);not null"`
	AddressLine2       string            `gorm:"column:address_line2;type:varchar(500)"`
	City               string            `gorm:"type:varchar(100);not null"`
	State              string            `gorm:"type:varchar(100);not null"`
	Pincode            string            `gorm:"type:varchar(6);not null"`
	CreatedAt          time.Time         `gorm:"not null;index"`
	Items              []orderItemRecord `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     string          `gorm:"type:varchar(40);not null;index"`
	ProductID   int             `gorm:"not null"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity    int             `gorm:"not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func toOrderRecord(o *models.Order) orderRecord {
	return orderRecord{
		OrderID:            o.OrderID,
		UserPhone:          o.UserPhone,
		Subtotal:           o.Subtotal,
		DeliveryFee:        o.DeliveryFee,
		DiscountAmount:     o.Discount.Amount,
		DiscountPercentage: o.Discount.Percentage,
		DiscountLabel:      o.Discount.Label,
		TotalAmount:        o.TotalAmount,
		Status:             string(o.Status),
		PaymentMethod:      string(o.PaymentMethod),
		DeliveryName:       o.Address.Name,
		DeliveryPhone:      o.Address.Phone,
		AddressLine1:       o.Address.Line1,
		AddressLine2:       o.Address.Line2,
		City:               o.Address.City,
		State:              o.Address.State,
		Pincode:            o.Address.Pincode,
		CreatedAt:          o.CreatedAt,
	}
}

func toItemRecords(o *models.Order) []orderItemRecord {
	items := make([]orderItemRecord, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemRecord{
			OrderID:     o.OrderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return items
}

func (rec *orderRecord) toModel() models.Order {
	o := models.Order{
		OrderID:     rec.OrderID,
		UserPhone:   rec.UserPhone,
		Subtotal:    rec.Subtotal,
		DeliveryFee: rec.DeliveryFee,
		Discount: models.Discount{
			Amount:     rec.DiscountAmount,
			Percentage: rec.DiscountPercentage,
			Label:      rec.DiscountLabel,
		},
		TotalAmount:   rec.TotalAmount,
		Status:        models.OrderStatus(rec.Status),
		PaymentMethod: models.PaymentMethod(rec.PaymentMethod),
		Address: models.Address{
			Name:    rec.DeliveryName,
			Phone:   rec.DeliveryPhone,
			Line1:   rec.AddressLine1,
			Line2:   rec.AddressLine2,
			City:    rec.City,
			State:   rec.State,
			Pincode: rec.Pincode,
		},
		CreatedAt: rec.CreatedAt,
		Items:     make([]models.OrderItem, 0, len(rec.Items)),
	}
	for _, it := range rec.Items {
		o.Items = append(o.Items, models.OrderItem{
			OrderID:     rec.OrderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.Price,
			Quantity:    it.Quantity,
		})
	}
	return o
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create inserts the order header and its items in one transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if len(order.Items) == 0 {
		return emptyOrder(order.OrderID)
	}
	header := toOrderRecord(order)
	items := toItemRecords(order)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&header).Error; err != nil {
			return errors.Wrap(err, "insert order")
		}
		if err := tx.Create(&items).Error; err != nil {
			return errors.Wrap(err, "insert order items")
		}
		return nil
	})
	if err != nil {
		return persistenceError("create order", err)
	}
	return nil
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// ListByUserPhone retrieves all orders of a user, newest first.
func (r *GORMOrderRepository) ListByUserPhone(ctx context.Context, phone string) ([]models.Order, error) {
	var recs []orderRecord
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("user_phone = ?", phone).
		Order("created_at DESC").
		Order("order_id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, persistenceError("list orders", err)
	}

	orders := make([]models.Order, 0, len(recs))
	for i := range recs {
		orders = append(orders, recs[i].toModel())
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	var rec orderRecord
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&rec, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound(orderID)
		}
		return nil, persistenceError("get order", err)
	}
	o := rec.toModel()
	return &o, nil
}

// UpdateStatus applies a legal status transition. The update is conditional on
// the status read, so a concurrent change makes this call fail instead of
// silently overwriting it.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.OrderStatus, error) {
	var previous models.OrderStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec orderRecord
		if err := tx.Select("order_id", "status").First(&rec, "order_id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return orderNotFound(orderID)
			}
			return errors.Wrap(err, "read order status")
		}
		previous = models.OrderStatus(rec.Status)
		if !previous.CanTransitionTo(status) {
			return illegalTransition(previous, status)
		}
		if previous == status {
			return nil
		}

		res := tx.Model(&orderRecord{}).
			Where("order_id = ? AND status = ?", orderID, rec.Status).
			Update("status", string(status))
		if res.Error != nil {
			return errors.Wrap(res.Error, "write order status")
		}
		if res.RowsAffected == 0 {
			return statusRace(orderID)
		}
		return nil
	})
	if err != nil {
		return "", persistenceError("update order status", err)
	}
	return previous, nil
}

package models

import "github.com/shopspring/decimal"

// Product represents a catalog item. The catalog is seeded externally and is
// read-only through the API.
type Product struct {
	ID    int             `json:"id" gorm:"primaryKey;autoIncrement"`
	Name  string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name_unit" validate:"required,min=2,max=255"`
	Price decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Unit  string          `json:"unit" gorm:"type:varchar(50);uniqueIndex:idx_products_name_unit" validate:"max=50"`
	Image string          `json:"image" gorm:"type:text" validate:"omitempty,url"`
}

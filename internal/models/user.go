package models

import "time"

// User represents a storefront account. The phone number is the identity key.
// Passwords are stored as entered; hashing is out of scope for this store.
type User struct {
	Phone     string    `json:"phone" gorm:"primaryKey;type:varchar(10)" validate:"required,mobile_in"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Password  string    `json:"password,omitempty" gorm:"type:varchar(255);not null" validate:"required,min=6"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// ContactMessage is a submission of the storefront contact form.
type ContactMessage struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     *string   `json:"email" gorm:"type:varchar(255)"`
	Phone     *string   `json:"phone" gorm:"type:varchar(20)"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the table name used by the storefront database.
func (ContactMessage) TableName() string { return "contacts" }

package models

import "time"

type CustomerModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Name      string
	Email     string `gorm:"uniqueIndex:idx_customer_unique_email"`
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

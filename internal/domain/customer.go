package domain

import "time"

// Customer is upserted from checkout data once a payment is approved.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CustomerRepository interface {
	UpsertByEmail(customer *Customer) error
	GetByEmail(email string) (*Customer, error)
}

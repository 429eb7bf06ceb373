package models

import (
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
)

type PaymentRequestModel struct {
	ID                 string                      `gorm:"primaryKey;type:uuid"`
	Token              string                      `gorm:"uniqueIndex:idx_token"`
	Amount             float64
	Status             domain.PaymentRequestStatus `gorm:"index:idx_request_status"`
	CustomerName       string
	CustomerEmail      string                      `gorm:"index:idx_customer_email"`
	CustomerPhone      string
	ProfileUsername    string
	ServiceID          string
	ServiceName        string
	ExternalServiceID  string
	AdditionalData     string                      `gorm:"type:jsonb"`
	ProcessedPaymentID string
	ExpiresAt          time.Time                   `gorm:"index:idx_request_expires"`
	ProcessedAt        *time.Time
	CreatedAt          time.Time                   `gorm:"index:idx_request_created"`
	UpdatedAt          time.Time
	Transactions       []TransactionModel          `gorm:"foreignKey:PaymentRequestID;references:ID"`
}

package models

import (
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
)

type TransactionModel struct {
	ID               string                   `gorm:"primaryKey;type:uuid"`
	PaymentRequestID string                   `gorm:"type:uuid;not null;index"`
	Provider         string                   `gorm:"index:idx_provider_external,priority:1"`
	ExternalID       string                   `gorm:"index:idx_provider_external,priority:2"`
	Status           domain.TransactionStatus `gorm:"index:idx_tx_status"`
	Method           string
	Amount           float64
	PixCode          string
	PixQRCode        string
	Metadata         string                   `gorm:"type:jsonb"`
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

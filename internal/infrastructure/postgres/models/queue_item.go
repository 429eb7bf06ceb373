package models

import (
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
)

type QueueItemModel struct {
	ID               string                 `gorm:"primaryKey;type:uuid"`
	Type             string                 `gorm:"index:idx_queue_type"`
	Status           domain.QueueItemStatus `gorm:"index:idx_queue_status_next,priority:1"`
	PaymentRequestID string                 `gorm:"type:uuid;index"`
	Priority         int
	Attempts         int
	LastError        string
	Metadata         string                 `gorm:"type:jsonb"`
	NextAttemptAt    *time.Time             `gorm:"index:idx_queue_status_next,priority:2"`
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

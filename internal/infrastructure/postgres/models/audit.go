package models

import "time"

// Audit tables are append-only. Rows get created by the webhook handlers and
// the dispatch worker and are read back for diagnostics only.

type WebhookLogModel struct {
	ID string `gorm:"primaryKey;type:uuid"`
	// Nullable: unresolved webhooks and reconciliation breadcrumbs have no
	// transaction to point at, and postgres rejects '' as a uuid.
	TransactionID *string `gorm:"type:uuid;index"`
	Type          string  `gorm:"index"`
	Event         string
	Data          string  `gorm:"type:jsonb"`
	Processed     bool
	Error         string
	CreatedAt     time.Time
}

type NotificationLogModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	TransactionID string `gorm:"type:uuid;index"`
	Type          string
	TargetURL     string
	Status        string `gorm:"index"`
	Payload       string `gorm:"type:jsonb"`
	Response      string `gorm:"type:jsonb"`
	ErrorMessage  string
	ErrorStack    string
	CreatedAt     time.Time
}

type ProviderResponseLogModel struct {
	ID               string `gorm:"primaryKey;type:uuid"`
	PaymentRequestID string `gorm:"type:uuid;index"`
	ProviderID       string
	OrderID          string
	Response         string `gorm:"type:jsonb"`
	CreatedAt        time.Time
}

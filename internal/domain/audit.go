package domain

import "time"

// Audit trail rows are write-once. Nothing in the service updates or deletes them.

type WebhookLog struct {
	ID            string
	TransactionID string
	Type          string
	Event         string
	Data          string
	Processed     bool
	Error         string
	CreatedAt     time.Time
}

type NotificationLogStatus string

const (
	NotificationSuccess NotificationLogStatus = "success"
	NotificationFailed  NotificationLogStatus = "failed"
	NotificationError   NotificationLogStatus = "error"
)

type NotificationLog struct {
	ID            string
	TransactionID string
	Type          string
	TargetURL     string
	Status        NotificationLogStatus
	Payload       string
	Response      string
	ErrorMessage  string
	ErrorStack    string
	CreatedAt     time.Time
}

type ProviderResponseLog struct {
	ID               string
	PaymentRequestID string
	ProviderID       string
	OrderID          string
	Response         string
	CreatedAt        time.Time
}

type WebhookLogRepository interface {
	LogWebhook(entry *WebhookLog) error
}

type NotificationLogRepository interface {
	LogNotification(entry *NotificationLog) error
	ListByTransactionID(transactionID string) ([]*NotificationLog, error)
}

type ProviderResponseLogRepository interface {
	LogProviderResponse(entry *ProviderResponseLog) error
	LatestByPaymentRequestID(requestID string) (*ProviderResponseLog, error)
}

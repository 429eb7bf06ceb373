package domain

import "time"

type QueueItemStatus string

const (
	QueueStatusPending   QueueItemStatus = "pending"
	QueueStatusProcessed QueueItemStatus = "processed"
	QueueStatusFailed    QueueItemStatus = "failed"
)

const QueueTypePaymentConfirmation = "payment_confirmation"

// MaxDispatchAttempts is the retry ceiling. A job that exhausts it is marked
// failed terminally and waits for manual requeue.
const MaxDispatchAttempts = 3

type QueueItem struct {
	ID               string
	Type             string
	Status           QueueItemStatus
	PaymentRequestID string
	Priority         int
	Attempts         int
	LastError        string
	MetadataJSON     string
	NextAttemptAt    *time.Time
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// QueueItemMetadata is the JSON blob stored on a queue item linking it back
// to the transaction that triggered it.
type QueueItemMetadata struct {
	TransactionID string   `json:"transaction_id"`
	ExternalID    string   `json:"external_id"`
	OrderIDs      []string `json:"order_ids,omitempty"`
	ProcessedAt   string   `json:"processed_at,omitempty"`
}

type QueueStats struct {
	Pending          int64
	Processed        int64
	Failed           int64
	OldestPendingAge time.Duration
}

type QueueRepository interface {
	CreateQueueItem(item *QueueItem) error
	GetQueueItemByID(itemID string) (*QueueItem, error)
	FindDue(now time.Time, limit int) ([]*QueueItem, error)
	FindByTransactionID(transactionID string) (*QueueItem, error)
	MarkProcessed(itemID string, processedAt time.Time, metadataJSON string) error
	RecordFailure(itemID string, attempts int, lastError string, nextAttemptAt time.Time, terminal bool) error
	Requeue(itemID string) error
	Stats() (*QueueStats, error)
}

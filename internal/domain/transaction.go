package domain

import "time"

type TransactionStatus string

const (
	TxStatusPending    TransactionStatus = "pending"
	TxStatusProcessing TransactionStatus = "processing"
	TxStatusApproved   TransactionStatus = "approved"
	TxStatusRejected   TransactionStatus = "rejected"
	TxStatusCancelled  TransactionStatus = "cancelled"
	TxStatusRefunded   TransactionStatus = "refunded"
	TxStatusFailed     TransactionStatus = "failed"
)

const (
	ProviderExpay       = "expay"
	ProviderMercadoPago = "mercadopago"
)

type Transaction struct {
	ID               string
	PaymentRequestID string
	Provider         string
	ExternalID       string
	Status           TransactionStatus
	Method           string
	Amount           float64
	PixCode          string
	PixQRCode        string
	MetadataJSON     string
	// ProcessedAt is set exactly once, when the orders service accepted the payment.
	// It is the idempotency gate against duplicate downstream notification.
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TransactionRepository interface {
	CreateTransaction(tx *Transaction) error
	GetTransactionByID(txID string) (*Transaction, error)
	GetTransactionByExternalID(provider, externalID string) (*Transaction, error)
	GetPendingByPaymentRequestID(requestID string) (*Transaction, error)
	GetLatestByPaymentRequestID(requestID string) (*Transaction, error)
	HasApprovedTransaction(requestID string) (bool, error)
	UpdateTransactionStatus(txID string, newStatus TransactionStatus) error
	UpdateTransactionMetadata(txID, metadataJSON string) error
	// MarkProcessed stamps processed_at only if it is still unset.
	// Returns false when another attempt already claimed the transaction.
	MarkProcessed(txID string, processedAt time.Time) (bool, error)
	// FindApprovedUnprocessed returns approved transactions that were never
	// handed to the orders service, oldest first.
	FindApprovedUnprocessed(before time.Time, limit int) ([]*Transaction, error)
}

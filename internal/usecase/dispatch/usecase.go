package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/kafka"
	"github.com/viralizamos/payment-service/internal/infrastructure/metrics"
)

// defaultPriority for payment confirmations. Manual requeues keep whatever
// priority the item already had.
const defaultPriority = 10

type EventPublisher interface {
	PublishPaymentApproved(topic string, event kafka.PaymentApprovedEvent) error
}

type DispatchUsecase interface {
	Enqueue(ctx context.Context, transactionID, paymentRequestID, externalID string) (string, error)
	ProcessQueueItem(ctx context.Context, item *domain.QueueItem) error
	RequeueFailed(itemID string) (*domain.QueueItem, error)
	Stats() (*domain.QueueStats, error)
}

// DefaultDispatchUsecase hands approved payments over to the orders service.
// Every handoff is backed by a durable queue item so a crashed worker or a
// dropped broker message never loses a paid order.
type DefaultDispatchUsecase struct {
	QueueRepo           domain.QueueRepository
	TxRepo              domain.TransactionRepository
	RequestRepo         domain.PaymentRequestRepository
	NotificationLogRepo domain.NotificationLogRepository
	ProviderLogRepo     domain.ProviderResponseLogRepository
	Orders              domain.OrdersPort
	Publisher           EventPublisher
	Topic               string
	RetryDelay          time.Duration
	Metrics             *metrics.PaymentMetrics
}

func NewDefaultDispatchUsecase(
	queueRepo domain.QueueRepository,
	txRepo domain.TransactionRepository,
	requestRepo domain.PaymentRequestRepository,
	notificationLogRepo domain.NotificationLogRepository,
	providerLogRepo domain.ProviderResponseLogRepository,
	ordersPort domain.OrdersPort,
	publisher EventPublisher,
	topic string,
	retryDelay time.Duration,
	paymentMetrics *metrics.PaymentMetrics) *DefaultDispatchUsecase {

	return &DefaultDispatchUsecase{
		QueueRepo:           queueRepo,
		TxRepo:              txRepo,
		RequestRepo:         requestRepo,
		NotificationLogRepo: notificationLogRepo,
		ProviderLogRepo:     providerLogRepo,
		Orders:              ordersPort,
		Publisher:           publisher,
		Topic:               topic,
		RetryDelay:          retryDelay,
		Metrics:             paymentMetrics,
	}
}

// Enqueue records a durable queue item for the transaction and publishes the
// approval event. The queue item is the source of truth: if the publish fails
// the retry sweep still picks the item up.
func (uc *DefaultDispatchUsecase) Enqueue(ctx context.Context, transactionID, paymentRequestID, externalID string) (string, error) {
	if existing, err := uc.QueueRepo.FindByTransactionID(transactionID); err == nil {
		slog.Info("dispatch already enqueued", "transaction_id", transactionID, "queue_item_id", existing.ID)
		return existing.ID, nil
	}

	metadata, err := json.Marshal(domain.QueueItemMetadata{
		TransactionID: transactionID,
		ExternalID:    externalID,
	})
	if err != nil {
		return "", err
	}

	now := time.Now()
	item := &domain.QueueItem{
		ID:               uuid.New().String(),
		Type:             domain.QueueTypePaymentConfirmation,
		Status:           domain.QueueStatusPending,
		PaymentRequestID: paymentRequestID,
		Priority:         defaultPriority,
		MetadataJSON:     string(metadata),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.QueueRepo.CreateQueueItem(item); err != nil {
		return "", err
	}

	event := kafka.PaymentApprovedEvent{
		TransactionID:    transactionID,
		PaymentRequestID: paymentRequestID,
		ExternalID:       externalID,
		QueueItemID:      item.ID,
	}
	if tx, err := uc.TxRepo.GetTransactionByID(transactionID); err == nil {
		event.Provider = tx.Provider
		event.Amount = tx.Amount
	}
	if err := uc.Publisher.PublishPaymentApproved(uc.Topic, event); err != nil {
		slog.Error("failed to publish payment approved event, retry sweep will pick it up",
			"queue_item_id", item.ID, "error", err)
	}

	slog.Info("dispatch enqueued", "queue_item_id", item.ID, "transaction_id", transactionID)
	return item.ID, nil
}

// RequeueFailed resets a terminally failed item back to pending for another
// round of attempts. Operator-triggered.
func (uc *DefaultDispatchUsecase) RequeueFailed(itemID string) (*domain.QueueItem, error) {
	if err := uc.QueueRepo.Requeue(itemID); err != nil {
		return nil, err
	}
	slog.Info("queue item requeued", "queue_item_id", itemID)
	return uc.QueueRepo.GetQueueItemByID(itemID)
}

func (uc *DefaultDispatchUsecase) Stats() (*domain.QueueStats, error) {
	stats, err := uc.QueueRepo.Stats()
	if err != nil {
		return nil, err
	}
	if uc.Metrics != nil {
		uc.Metrics.RecordQueueDepth(stats.Pending, stats.Processed, stats.Failed)
	}
	return stats, nil
}

package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/kafka"
)

// retryBatchSize bounds how many due items one sweep picks up.
const retryBatchSize = 10

// undispatchedGrace keeps the sweep from racing a webhook that is still
// mid-flight through the enqueue path.
const undispatchedGrace = 5 * time.Minute

// StartWorker consumes approval events and processes the queue item each one
// points at. Runs until ctx is cancelled.
func (uc *DefaultDispatchUsecase) StartWorker(ctx context.Context, subscriber domain.SubscriberPort, topic, groupID string) error {
	messages, err := subscriber.Subscribe(topic, groupID)
	if err != nil {
		return err
	}

	go func() {
		slog.Info("dispatch worker started", "topic", topic, "group_id", groupID)
		for {
			select {
			case <-ctx.Done():
				slog.Info("dispatch worker stopped")
				return
			case msg, ok := <-messages:
				if !ok {
					slog.Warn("dispatch worker channel closed")
					return
				}
				uc.handleEvent(ctx, msg)
			}
		}
	}()
	return nil
}

func (uc *DefaultDispatchUsecase) handleEvent(ctx context.Context, msg domain.Message) {
	var event kafka.PaymentApprovedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		slog.Error("dropping malformed payment event", "error", err)
		return
	}

	item, err := uc.resolveQueueItem(event)
	if err != nil {
		slog.Error("payment event matched no queue item",
			"transaction_id", event.TransactionID, "error", err)
		return
	}
	if item.Status != domain.QueueStatusPending {
		slog.Info("queue item no longer pending, skipping event",
			"queue_item_id", item.ID, "status", item.Status)
		return
	}

	if err := uc.ProcessQueueItem(ctx, item); err != nil {
		// Already booked as a failed attempt; the retry sweep takes over
		slog.Warn("event-triggered dispatch failed", "queue_item_id", item.ID, "error", err)
	}
}

func (uc *DefaultDispatchUsecase) resolveQueueItem(event kafka.PaymentApprovedEvent) (*domain.QueueItem, error) {
	if event.QueueItemID != "" {
		if item, err := uc.QueueRepo.GetQueueItemByID(event.QueueItemID); err == nil {
			return item, nil
		}
	}
	return uc.QueueRepo.FindByTransactionID(event.TransactionID)
}

// StartRetryWorker sweeps the queue on a fixed interval and retries whatever
// is due. This is the durability backstop behind the event-driven path.
func (uc *DefaultDispatchUsecase) StartRetryWorker(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		slog.Info("dispatch retry sweep started", "interval", interval)
		for {
			select {
			case <-ctx.Done():
				slog.Info("dispatch retry sweep stopped")
				return
			case <-ticker.C:
				uc.sweepDue(ctx)
				uc.sweepUndispatched(ctx)
			}
		}
	}()
}

func (uc *DefaultDispatchUsecase) sweepDue(ctx context.Context) {
	items, err := uc.QueueRepo.FindDue(time.Now(), retryBatchSize)
	if err != nil {
		slog.Error("retry sweep query failed", "error", err)
		return
	}
	if len(items) == 0 {
		return
	}

	slog.Info("retry sweep picked up due queue items", "count", len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		if err := uc.ProcessQueueItem(ctx, item); err != nil {
			slog.Warn("retry sweep attempt failed", "queue_item_id", item.ID, "error", err)
		}
	}
}

// sweepUndispatched re-enqueues approved transactions whose handoff never
// produced a queue item, e.g. when the enqueue failed right after the webhook
// marked the payment approved. Enqueue is idempotent, so transactions that
// already have an item are a cheap no-op.
func (uc *DefaultDispatchUsecase) sweepUndispatched(ctx context.Context) {
	txs, err := uc.TxRepo.FindApprovedUnprocessed(time.Now().Add(-undispatchedGrace), retryBatchSize)
	if err != nil {
		slog.Error("undispatched sweep query failed", "error", err)
		return
	}

	for _, tx := range txs {
		if ctx.Err() != nil {
			return
		}
		if _, err := uc.Enqueue(ctx, tx.ID, tx.PaymentRequestID, tx.ExternalID); err != nil {
			slog.Warn("undispatched sweep enqueue failed", "transaction_id", tx.ID, "error", err)
		}
	}
}

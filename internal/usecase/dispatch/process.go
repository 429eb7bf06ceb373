package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
)

// ProcessQueueItem delivers one queue item to the orders service. The
// transaction's processed_at stamp is the idempotency gate: a transaction that
// already carries it is acknowledged without creating anything downstream.
func (uc *DefaultDispatchUsecase) ProcessQueueItem(ctx context.Context, item *domain.QueueItem) error {
	started := time.Now()

	var metadata domain.QueueItemMetadata
	if err := json.Unmarshal([]byte(item.MetadataJSON), &metadata); err != nil {
		return uc.failAttempt(item, "", fmt.Errorf("malformed queue item metadata: %w", err))
	}

	tx, err := uc.TxRepo.GetTransactionByID(metadata.TransactionID)
	if err != nil {
		return uc.failAttempt(item, metadata.TransactionID, fmt.Errorf("loading transaction: %w", err))
	}

	if tx.ProcessedAt != nil {
		slog.Info("transaction already dispatched, acknowledging queue item",
			"queue_item_id", item.ID, "transaction_id", tx.ID)
		return uc.QueueRepo.MarkProcessed(item.ID, time.Now(), item.MetadataJSON)
	}

	request, err := uc.RequestRepo.GetPaymentRequestByID(item.PaymentRequestID)
	if err != nil {
		return uc.failAttempt(item, tx.ID, fmt.Errorf("loading payment request: %w", err))
	}

	orders, err := buildOrders(request, tx)
	if err != nil {
		return uc.failAttempt(item, tx.ID, err)
	}

	orderIDs := make([]string, 0, len(orders))
	for _, order := range orders {
		orderID, rawResponse, err := uc.Orders.CreateOrder(ctx, order)
		if err != nil {
			return uc.failAttempt(item, tx.ID,
				fmt.Errorf("creating order %s: %w", order.IdempotencyKey, err))
		}
		orderIDs = append(orderIDs, orderID)

		if logErr := uc.ProviderLogRepo.LogProviderResponse(&domain.ProviderResponseLog{
			PaymentRequestID: request.ID,
			ProviderID:       "orders-service",
			OrderID:          orderID,
			Response:         rawResponse,
		}); logErr != nil {
			slog.Error("failed to log orders service response", "error", logErr)
		}
	}

	return uc.finishItem(ctx, item, tx, request, metadata, orderIDs, started)
}

func (uc *DefaultDispatchUsecase) finishItem(ctx context.Context, item *domain.QueueItem, tx *domain.Transaction, request *domain.PaymentRequest, metadata domain.QueueItemMetadata, orderIDs []string, started time.Time) error {
	now := time.Now()

	metadata.OrderIDs = orderIDs
	metadata.ProcessedAt = now.UTC().Format(time.RFC3339)
	metadataJSON, _ := json.Marshal(metadata)
	if err := uc.QueueRepo.MarkProcessed(item.ID, now, string(metadataJSON)); err != nil {
		return fmt.Errorf("marking queue item processed: %w", err)
	}

	claimed, err := uc.TxRepo.MarkProcessed(tx.ID, now)
	if err != nil {
		slog.Error("failed to stamp transaction processed_at", "transaction_id", tx.ID, "error", err)
	} else if !claimed {
		// A concurrent worker got here first. The idempotency keys sent with
		// the orders mean the downstream side saw no duplicates.
		slog.Warn("transaction was already stamped processed", "transaction_id", tx.ID)
	}

	ordersJSON, _ := json.Marshal(orderIDs)
	merged := mergeTransactionMetadata(tx.MetadataJSON, "processed_orders", json.RawMessage(ordersJSON))
	if err := uc.TxRepo.UpdateTransactionMetadata(tx.ID, merged); err != nil {
		slog.Error("failed to record processed orders on transaction", "transaction_id", tx.ID, "error", err)
	}

	if request.Status != domain.RequestStatusCompleted {
		if err := uc.RequestRepo.MarkCompleted(request.ID, tx.ID); err != nil {
			slog.Error("failed to complete payment request", "request_id", request.ID, "error", err)
		}
	}

	uc.logNotification(tx.ID, domain.NotificationSuccess, item.MetadataJSON,
		strings.Join(orderIDs, ","), "")

	if uc.Metrics != nil {
		uc.Metrics.RecordDispatch("success", time.Since(started).Seconds(), len(orderIDs))
	}
	slog.Info("queue item dispatched",
		"queue_item_id", item.ID, "transaction_id", tx.ID, "orders", len(orderIDs))
	return nil
}

// failAttempt books one failed delivery attempt. Attempts past the ceiling
// flip the item to failed and leave it for a manual requeue.
func (uc *DefaultDispatchUsecase) failAttempt(item *domain.QueueItem, transactionID string, cause error) error {
	attempts := item.Attempts + 1
	terminal := attempts >= domain.MaxDispatchAttempts
	nextAttempt := time.Now().Add(uc.RetryDelay)

	if err := uc.QueueRepo.RecordFailure(item.ID, attempts, cause.Error(), nextAttempt, terminal); err != nil {
		slog.Error("failed to record queue failure", "queue_item_id", item.ID, "error", err)
	}

	if transactionID != "" {
		uc.logNotification(transactionID, domain.NotificationFailed, item.MetadataJSON, "", cause.Error())
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordDispatch("failure", 0, 0)
		if terminal {
			uc.Metrics.DispatchExhaustedTotal.Inc()
		}
	}

	if terminal {
		slog.Error("queue item exhausted retries",
			"queue_item_id", item.ID, "attempts", attempts, "error", cause)
	} else {
		slog.Warn("queue item attempt failed, will retry",
			"queue_item_id", item.ID, "attempts", attempts, "next_attempt_at", nextAttempt, "error", cause)
	}
	return cause
}

func (uc *DefaultDispatchUsecase) logNotification(transactionID string, status domain.NotificationLogStatus, payload, response, errMsg string) {
	if err := uc.NotificationLogRepo.LogNotification(&domain.NotificationLog{
		TransactionID: transactionID,
		Type:          "order_creation",
		TargetURL:     "orders-service",
		Status:        status,
		Payload:       payload,
		Response:      response,
		ErrorMessage:  errMsg,
	}); err != nil {
		slog.Error("failed to write notification log", "error", err)
	}
}

func mergeTransactionMetadata(existingJSON, key string, value any) string {
	merged := map[string]any{}
	if existingJSON != "" {
		if err := json.Unmarshal([]byte(existingJSON), &merged); err != nil {
			merged = map[string]any{"previous_metadata_raw": existingJSON}
		}
	}
	merged[key] = value
	out, err := json.Marshal(merged)
	if err != nil {
		return existingJSON
	}
	return string(out)
}

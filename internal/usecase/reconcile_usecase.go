package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/metrics"
)

// Reconciliation sweep defaults: paid checkouts from the last week, in
// batches small enough to stay polite to the orders service.
const (
	reconcileDefaultDaysAgo = 7
	reconcileDefaultLimit   = 50
)

type ReconcileReport struct {
	Scanned   int                                    `json:"scanned"`
	Updated   int                                    `json:"updated"`
	Unchanged int                                    `json:"unchanged"`
	Skipped   int                                    `json:"skipped"`
	Errors    int                                    `json:"errors"`
	Changes   map[string]domain.PaymentRequestStatus `json:"changes,omitempty"`
}

// CheckStatusResult carries both the downstream status verbatim and what it
// mapped to, for operator debugging.
type CheckStatusResult struct {
	PaymentRequestID string                      `json:"payment_request_id"`
	OrderStatus      string                      `json:"order_status"`
	Status           domain.PaymentRequestStatus `json:"status"`
}

type ReconcileUsecase interface {
	// SyncStatuses sweeps checkouts created in the last daysAgo days, at most
	// limit of them. Zero or negative values fall back to the defaults.
	SyncStatuses(ctx context.Context, daysAgo, limit int) (*ReconcileReport, error)
	CheckStatus(ctx context.Context, ref string) (*CheckStatusResult, error)
}

// DefaultReconcileUsecase pulls order status from the orders service for
// recently paid checkouts and corrects any request whose status drifted.
type DefaultReconcileUsecase struct {
	RequestRepo     domain.PaymentRequestRepository
	ProviderLogRepo domain.ProviderResponseLogRepository
	WebhookLogRepo  domain.WebhookLogRepository
	Orders          domain.OrdersPort
	Metrics         *metrics.PaymentMetrics
}

func NewDefaultReconcileUsecase(
	requestRepo domain.PaymentRequestRepository,
	providerLogRepo domain.ProviderResponseLogRepository,
	webhookLogRepo domain.WebhookLogRepository,
	ordersPort domain.OrdersPort,
	paymentMetrics *metrics.PaymentMetrics) *DefaultReconcileUsecase {

	return &DefaultReconcileUsecase{
		RequestRepo:     requestRepo,
		ProviderLogRepo: providerLogRepo,
		WebhookLogRepo:  webhookLogRepo,
		Orders:          ordersPort,
		Metrics:         paymentMetrics,
	}
}

// SyncStatuses runs one reconciliation sweep over recently paid checkouts.
func (uc *DefaultReconcileUsecase) SyncStatuses(ctx context.Context, daysAgo, limit int) (*ReconcileReport, error) {
	if daysAgo <= 0 {
		daysAgo = reconcileDefaultDaysAgo
	}
	if limit <= 0 {
		limit = reconcileDefaultLimit
	}

	requests, err := uc.RequestRepo.FindForReconciliation(domain.PaymentRequestFilters{
		CreatedAfter: time.Now().AddDate(0, 0, -daysAgo),
		ExcludeStatuses: []domain.PaymentRequestStatus{
			domain.RequestStatusFailed,
			domain.RequestStatusExpired,
			domain.RequestStatusCancelled,
		},
		WithApprovedTx: true,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		Scanned: len(requests),
		Changes: map[string]domain.PaymentRequestStatus{},
	}
	for _, request := range requests {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		oldStatus := request.Status
		newStatus, _, err := uc.reconcileOne(ctx, request)
		switch {
		case errors.Is(err, domain.ErrMissingExternalOrderID):
			report.Skipped++
		case err != nil:
			report.Errors++
			slog.Warn("reconciliation failed for request", "request_id", request.ID, "error", err)
		case newStatus == oldStatus:
			report.Unchanged++
		default:
			report.Updated++
			report.Changes[request.ID] = newStatus
		}
	}

	if uc.Metrics != nil {
		uc.Metrics.ReconciliationRunsTotal.Inc()
	}
	slog.Info("reconciliation sweep finished",
		"scanned", report.Scanned, "updated", report.Updated,
		"skipped", report.Skipped, "errors", report.Errors)
	return report, nil
}

// CheckStatus reconciles a single checkout on demand. ref may be the request
// id or its public token.
func (uc *DefaultReconcileUsecase) CheckStatus(ctx context.Context, ref string) (*CheckStatusResult, error) {
	request, err := uc.RequestRepo.GetPaymentRequestByID(ref)
	if err != nil {
		request, err = uc.RequestRepo.GetPaymentRequestByToken(ref)
		if err != nil {
			return nil, err
		}
	}

	result := &CheckStatusResult{PaymentRequestID: request.ID, Status: request.Status}
	if request.Status.Terminal() {
		return result, nil
	}

	newStatus, orderStatus, err := uc.reconcileOne(ctx, request)
	if err != nil {
		return nil, err
	}
	result.OrderStatus = orderStatus
	result.Status = newStatus
	return result, nil
}

func (uc *DefaultReconcileUsecase) reconcileOne(ctx context.Context, request *domain.PaymentRequest) (domain.PaymentRequestStatus, string, error) {
	externalOrderID, err := uc.externalOrderID(request)
	if err != nil {
		return request.Status, "", err
	}

	orderStatus, err := uc.Orders.OrderStatus(ctx, externalOrderID)
	if err != nil {
		return request.Status, "", fmt.Errorf("order status check: %w", err)
	}

	newStatus, known := MapOrderStatus(orderStatus, request.Status)
	if !known || newStatus == request.Status {
		return request.Status, orderStatus, nil
	}

	if err := uc.RequestRepo.UpdatePaymentRequestStatus(request.ID, newStatus); err != nil {
		return request.Status, orderStatus, err
	}

	// Breadcrumb so support can tell webhook-driven changes from sweeps
	breadcrumb, _ := json.Marshal(map[string]string{
		"request_id":   request.ID,
		"order_id":     externalOrderID,
		"order_status": orderStatus,
		"old_status":   string(request.Status),
		"new_status":   string(newStatus),
	})
	if err := uc.WebhookLogRepo.LogWebhook(&domain.WebhookLog{
		Type:      "status_change",
		Event:     "batch_sync",
		Data:      string(breadcrumb),
		Processed: true,
	}); err != nil {
		slog.Error("failed to write reconciliation breadcrumb", "error", err)
	}

	if uc.Metrics != nil {
		uc.Metrics.ReconciliationUpdatesTotal.WithLabelValues(string(newStatus)).Inc()
	}
	slog.Info("reconciliation corrected request status",
		"request_id", request.ID, "old_status", request.Status, "new_status", newStatus)
	return newStatus, orderStatus, nil
}

// externalOrderID digs the downstream order id out of the checkout data, or
// falls back to the latest recorded orders-service response.
func (uc *DefaultReconcileUsecase) externalOrderID(request *domain.PaymentRequest) (string, error) {
	if request.Service.AdditionalData != "" {
		var data struct {
			OrderID                   string   `json:"order_id"`
			ExternalOrderID           string   `json:"external_order_id"`
			OrdersMicroserviceOrderID string   `json:"orders_microservice_order_id"`
			ProcessedOrders           []string `json:"processed_orders"`
		}
		if err := json.Unmarshal([]byte(request.Service.AdditionalData), &data); err == nil {
			for _, candidate := range []string{data.OrderID, data.ExternalOrderID, data.OrdersMicroserviceOrderID} {
				if candidate != "" {
					return candidate, nil
				}
			}
			if len(data.ProcessedOrders) > 0 && data.ProcessedOrders[0] != "" {
				return data.ProcessedOrders[0], nil
			}
		}
	}

	logEntry, err := uc.ProviderLogRepo.LatestByPaymentRequestID(request.ID)
	if err != nil {
		return "", err
	}
	if logEntry == nil || logEntry.OrderID == "" {
		return "", domain.ErrMissingExternalOrderID
	}
	return logEntry.OrderID, nil
}

// MapOrderStatus folds the orders service's free-form status vocabulary into
// checkout statuses. Unrecognized values leave the request untouched.
func MapOrderStatus(orderStatus string, current domain.PaymentRequestStatus) (domain.PaymentRequestStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(orderStatus))
	switch {
	case strings.Contains(normalized, "cancel"),
		strings.Contains(normalized, "failed"),
		strings.Contains(normalized, "rejected"):
		return domain.RequestStatusFailed, true
	case strings.Contains(normalized, "complet"),
		strings.Contains(normalized, "success"):
		return domain.RequestStatusCompleted, true
	case strings.Contains(normalized, "progress"),
		strings.Contains(normalized, "processing"):
		return domain.RequestStatusProcessing, true
	case strings.Contains(normalized, "partial"):
		return domain.RequestStatusPartial, true
	case strings.Contains(normalized, "pending"):
		return domain.RequestStatusPending, true
	}
	return current, false
}

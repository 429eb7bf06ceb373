package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/expay"
	"github.com/viralizamos/payment-service/internal/infrastructure/mercadopago"
	"github.com/viralizamos/payment-service/internal/infrastructure/metrics"
	"github.com/viralizamos/payment-service/internal/infrastructure/redisdedup"
)

// webhookDedupTTL bounds how long an identical provider delivery is
// suppressed. Replays after the window are harmless: status no-ops and the
// processed_at gate cover them.
const webhookDedupTTL = 24 * time.Hour

type MercadoPagoAPI interface {
	GetPayment(ctx context.Context, externalID string) (*mercadopago.PaymentDetails, error)
}

type ExpayAPI interface {
	CreatePixPayment(ctx context.Context, req expay.PaymentRequest) (*expay.PaymentResponse, error)
	CheckPaymentStatus(ctx context.Context, notification expay.WebhookNotification) (*expay.StatusResponse, error)
}

type PaymentUsecase interface {
	CreatePixCharge(ctx context.Context, token string) (*domain.Transaction, error)
	HandleMercadoPagoWebhook(ctx context.Context, eventType, externalID, rawBody string) error
	HandleExpayWebhook(ctx context.Context, notification expay.WebhookNotification, rawBody string) error
}

type DefaultPaymentUsecase struct {
	RequestRepo         domain.PaymentRequestRepository
	TxRepo              domain.TransactionRepository
	CustomerRepo        domain.CustomerRepository
	WebhookLogRepo      domain.WebhookLogRepository
	NotificationLogRepo domain.NotificationLogRepository
	Deduper             domain.WebhookDeduper
	Enqueuer            domain.DispatchEnqueuer
	MercadoPago         MercadoPagoAPI
	Expay               ExpayAPI
	ExpayWebhookURL     string
	Metrics             *metrics.PaymentMetrics
}

func NewDefaultPaymentUsecase(
	requestRepo domain.PaymentRequestRepository,
	txRepo domain.TransactionRepository,
	customerRepo domain.CustomerRepository,
	webhookLogRepo domain.WebhookLogRepository,
	notificationLogRepo domain.NotificationLogRepository,
	deduper domain.WebhookDeduper,
	enqueuer domain.DispatchEnqueuer,
	mercadoPagoAPI MercadoPagoAPI,
	expayAPI ExpayAPI,
	expayWebhookURL string,
	paymentMetrics *metrics.PaymentMetrics) *DefaultPaymentUsecase {

	return &DefaultPaymentUsecase{
		RequestRepo:         requestRepo,
		TxRepo:              txRepo,
		CustomerRepo:        customerRepo,
		WebhookLogRepo:      webhookLogRepo,
		NotificationLogRepo: notificationLogRepo,
		Deduper:             deduper,
		Enqueuer:            enqueuer,
		MercadoPago:         mercadoPagoAPI,
		Expay:               expayAPI,
		ExpayWebhookURL:     expayWebhookURL,
		Metrics:             paymentMetrics,
	}
}

// CreatePixCharge creates (or reuses) a PIX charge for a pending checkout.
func (uc *DefaultPaymentUsecase) CreatePixCharge(ctx context.Context, token string) (*domain.Transaction, error) {
	request, err := uc.RequestRepo.GetPaymentRequestByToken(token)
	if err != nil {
		return nil, err
	}

	switch request.Status {
	case domain.RequestStatusCompleted, domain.RequestStatusExpired, domain.RequestStatusCancelled:
		return nil, domain.ErrRequestNotPayable
	}

	// An open charge for this checkout is reused instead of double-charging
	if existing, err := uc.TxRepo.GetPendingByPaymentRequestID(request.ID); err == nil {
		return existing, nil
	}

	productName := pixProductName(request)
	payment, err := uc.Expay.CreatePixPayment(ctx, expay.PaymentRequest{
		InvoiceID:          request.ID,
		InvoiceDescription: productName,
		Total:              request.Amount,
		Devedor:            request.Customer.Name,
		Email:              request.Customer.Email,
		CpfCnpj:            "00000000000",
		NotificationURL:    uc.ExpayWebhookURL,
		Telefone:           orDefault(request.Customer.Phone, "0000000000"),
		Items: []expay.Item{{
			Name:        productName,
			Price:       request.Amount,
			Description: productName,
			Qty:         1,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pix charge: %w", err)
	}

	rawResponse, _ := json.Marshal(payment)
	now := time.Now()
	tx := &domain.Transaction{
		ID:               uuid.New().String(),
		PaymentRequestID: request.ID,
		Provider:         domain.ProviderExpay,
		ExternalID:       request.ID,
		Status:           domain.TxStatusPending,
		Method:           "pix",
		Amount:           request.Amount,
		PixCode:          payment.EMV,
		PixQRCode:        payment.QRCodeBase64,
		MetadataJSON:     mergeMetadata("", "expay_response", json.RawMessage(rawResponse)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.TxRepo.CreateTransaction(tx); err != nil {
		return nil, err
	}

	if err := uc.RequestRepo.UpdatePaymentRequestStatus(request.ID, domain.RequestStatusProcessing); err != nil {
		slog.Error("failed to move request to processing", "request_id", request.ID, "error", err)
	}

	if uc.Metrics != nil {
		uc.Metrics.PixChargesCreatedTotal.WithLabelValues(domain.ProviderExpay).Inc()
	}
	slog.Info("pix charge created", "request_id", request.ID, "transaction_id", tx.ID)
	return tx, nil
}

// HandleMercadoPagoWebhook resolves the provider payment id to a transaction
// and applies the freshly fetched provider status. All failure modes are
// recorded; the handler above always acknowledges with 200.
func (uc *DefaultPaymentUsecase) HandleMercadoPagoWebhook(ctx context.Context, eventType, externalID, rawBody string) error {
	if uc.Metrics != nil {
		uc.Metrics.RecordWebhook(domain.ProviderMercadoPago)
	}

	if eventType != "payment" {
		slog.Info("ignoring non-payment mercado pago notification", "type", eventType)
		return nil
	}

	tx, err := uc.TxRepo.GetTransactionByExternalID(domain.ProviderMercadoPago, externalID)
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.RecordUnresolved(domain.ProviderMercadoPago)
		}
		// Recorded for later inspection; not a hard failure, the provider
		// must not keep retrying an id we will never know.
		uc.logWebhook("", domain.ProviderMercadoPago, "payment.update", rawBody, false, "transaction not found")
		slog.Warn("mercado pago webhook for unknown payment", "external_id", externalID)
		return nil
	}

	details, err := uc.MercadoPago.GetPayment(ctx, externalID)
	if err != nil {
		uc.logWebhook(tx.ID, domain.ProviderMercadoPago, "payment.update", rawBody, false, err.Error())
		return fmt.Errorf("failed to fetch mercado pago payment: %w", err)
	}

	newStatus, ok := mercadopago.MapStatus(details.Status)
	if !ok {
		// Unknown vocabulary: keep the current status, flag for manual review
		uc.logWebhook(tx.ID, domain.ProviderMercadoPago, "payment.update", rawBody, false,
			fmt.Sprintf("unmapped provider status %q", details.Status))
		slog.Warn("unmapped mercado pago status", "status", details.Status, "transaction_id", tx.ID)
		return nil
	}

	if err := uc.applyProviderStatus(ctx, tx, newStatus, "mercadopago_data", details.RawResponse); err != nil {
		uc.logWebhook(tx.ID, domain.ProviderMercadoPago, "payment.update", rawBody, false, err.Error())
		return err
	}

	uc.logWebhook(tx.ID, domain.ProviderMercadoPago, "payment.update", rawBody, true, "")
	return nil
}

// HandleExpayWebhook follows the provider handshake: the notification only
// carries a token, the real transaction state comes from the status endpoint.
func (uc *DefaultPaymentUsecase) HandleExpayWebhook(ctx context.Context, notification expay.WebhookNotification, rawBody string) error {
	if uc.Metrics != nil {
		uc.Metrics.RecordWebhook(domain.ProviderExpay)
	}

	request, err := uc.RequestRepo.GetPaymentRequestByID(notification.InvoiceID)
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.RecordUnresolved(domain.ProviderExpay)
		}
		return err
	}

	statusResponse, err := uc.Expay.CheckPaymentStatus(ctx, notification)
	if err != nil {
		// Status-check failures must not fail the webhook, only the audit trail
		uc.logNotificationError(request, notification, rawBody, err)
		slog.Error("expay status check failed", "request_id", request.ID, "error", err)
		return nil
	}

	if !statusResponse.Result {
		slog.Warn("expay status check returned no transaction", "request_id", request.ID)
		return nil
	}

	tx, err := uc.TxRepo.GetLatestByPaymentRequestID(request.ID)
	if err != nil {
		slog.Warn("payment request has no transactions", "request_id", request.ID)
		return nil
	}

	newStatus := expay.MapStatus(statusResponse.TransactionRequest.Status)
	raw, _ := json.Marshal(statusResponse)
	if err := uc.applyProviderStatus(ctx, tx, newStatus, "expay_status", string(raw)); err != nil {
		return err
	}

	uc.logWebhook(tx.ID, domain.ProviderExpay, "payment.update", rawBody, true, "")
	return nil
}

// applyProviderStatus persists a provider-reported status transition
// idempotently and, on approval, triggers the downstream handoff. The dedup
// claim is handed back on failure so the provider's redelivery gets through.
func (uc *DefaultPaymentUsecase) applyProviderStatus(ctx context.Context, tx *domain.Transaction, newStatus domain.TransactionStatus, metadataKey, rawProviderJSON string) error {
	fingerprint := redisdedup.Fingerprint(tx.Provider, tx.ExternalID, string(newStatus))
	claimed, err := uc.Deduper.Claim(ctx, fingerprint, webhookDedupTTL)
	if err != nil {
		// Dedup store down: keep going, the status no-op below still protects us
		slog.Warn("webhook dedup unavailable", "error", err)
		claimed = false
	} else if !claimed {
		if uc.Metrics != nil {
			uc.Metrics.RecordDuplicate(tx.Provider)
		}
		slog.Info("suppressed replayed webhook", "transaction_id", tx.ID, "status", newStatus)
		return nil
	}

	if err := uc.applyTransition(ctx, tx, newStatus, metadataKey, rawProviderJSON); err != nil {
		if claimed {
			if relErr := uc.Deduper.Release(ctx, fingerprint); relErr != nil {
				slog.Error("failed to release webhook dedup claim", "fingerprint", fingerprint, "error", relErr)
			}
		}
		return err
	}
	return nil
}

func (uc *DefaultPaymentUsecase) applyTransition(ctx context.Context, tx *domain.Transaction, newStatus domain.TransactionStatus, metadataKey, rawProviderJSON string) error {
	if tx.Status == newStatus {
		// A replayed approval may be the only signal that the handoff never
		// happened; Enqueue is idempotent per transaction, so re-running the
		// approval path is safe.
		if newStatus == domain.TxStatusApproved && tx.ProcessedAt == nil {
			return uc.onApproved(ctx, tx)
		}
		return nil
	}

	if err := uc.TxRepo.UpdateTransactionStatus(tx.ID, newStatus); err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if rawProviderJSON != "" {
		merged := mergeMetadata(tx.MetadataJSON, metadataKey, json.RawMessage(rawProviderJSON))
		if err := uc.TxRepo.UpdateTransactionMetadata(tx.ID, merged); err != nil {
			slog.Error("failed to update transaction metadata", "transaction_id", tx.ID, "error", err)
		}
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordStatusTransition(tx.Provider, string(newStatus))
	}
	slog.Info("transaction status updated",
		"transaction_id", tx.ID, "old_status", tx.Status, "new_status", newStatus)

	if newStatus != domain.TxStatusApproved {
		return nil
	}
	return uc.onApproved(ctx, tx)
}

func (uc *DefaultPaymentUsecase) onApproved(ctx context.Context, tx *domain.Transaction) error {
	request, err := uc.RequestRepo.GetPaymentRequestByID(tx.PaymentRequestID)
	if err != nil {
		return err
	}

	if err := uc.CustomerRepo.UpsertByEmail(&domain.Customer{
		Name:  request.Customer.Name,
		Email: request.Customer.Email,
		Phone: request.Customer.Phone,
	}); err != nil {
		slog.Error("failed to upsert customer", "email", request.Customer.Email, "error", err)
	}

	if err := uc.RequestRepo.MarkCompleted(request.ID, tx.ID); err != nil {
		return fmt.Errorf("failed to complete payment request: %w", err)
	}

	if _, err := uc.Enqueuer.Enqueue(ctx, tx.ID, request.ID, tx.ExternalID); err != nil {
		return fmt.Errorf("failed to enqueue order dispatch: %w", err)
	}

	slog.Info("payment approved, dispatch enqueued", "transaction_id", tx.ID, "request_id", request.ID)
	return nil
}

func (uc *DefaultPaymentUsecase) logWebhook(transactionID, provider, event, data string, processed bool, errMsg string) {
	if err := uc.WebhookLogRepo.LogWebhook(&domain.WebhookLog{
		TransactionID: transactionID,
		Type:          provider,
		Event:         event,
		Data:          data,
		Processed:     processed,
		Error:         errMsg,
	}); err != nil {
		slog.Error("failed to write webhook log", "error", err)
	}
}

func (uc *DefaultPaymentUsecase) logNotificationError(request *domain.PaymentRequest, notification expay.WebhookNotification, rawBody string, cause error) {
	tx, err := uc.TxRepo.GetLatestByPaymentRequestID(request.ID)
	if err != nil {
		return
	}
	if err := uc.NotificationLogRepo.LogNotification(&domain.NotificationLog{
		TransactionID: tx.ID,
		Type:          "webhook",
		TargetURL:     "expay_webhook",
		Status:        domain.NotificationError,
		Payload:       rawBody,
		ErrorMessage:  cause.Error(),
	}); err != nil {
		slog.Error("failed to write notification log", "error", err)
	}
}

// mergeMetadata sets key in the metadata JSON blob, preserving other keys.
func mergeMetadata(existingJSON, key string, value any) string {
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

func pixProductName(request *domain.PaymentRequest) string {
	name := orDefault(request.Service.ServiceName, "Serviço Viralizamos")

	quantity := 0
	if request.Service.AdditionalData != "" {
		var additional struct {
			Quantity      int `json:"quantity"`
			TotalQuantity int `json:"total_quantity"`
		}
		if err := json.Unmarshal([]byte(request.Service.AdditionalData), &additional); err == nil {
			quantity = additional.TotalQuantity
			if quantity == 0 {
				quantity = additional.Quantity
			}
		}
	}

	// Quantifiable services carry the amount in the charge description
	if quantity > 1 {
		lower := strings.ToLower(name)
		for _, marker := range []string{"seguidores", "curtidas", "views", "visualizacoes"} {
			if strings.Contains(lower, marker) {
				return fmt.Sprintf("%d %s", quantity, name)
			}
		}
	}
	return name
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

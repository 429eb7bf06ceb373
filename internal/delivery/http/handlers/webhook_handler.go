package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viralizamos/payment-service/internal/delivery/http/dto/request"
	"github.com/viralizamos/payment-service/internal/delivery/http/dto/response"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/expay"
	"github.com/viralizamos/payment-service/internal/usecase"
)

type WebhookHandler struct {
	PaymentUsecase usecase.PaymentUsecase
	TxRepo         domain.TransactionRepository
	Enqueuer       domain.DispatchEnqueuer
}

func NewWebhookHandler(paymentUC usecase.PaymentUsecase, txRepo domain.TransactionRepository, enqueuer domain.DispatchEnqueuer) *WebhookHandler {
	return &WebhookHandler{
		PaymentUsecase: paymentUC,
		TxRepo:         txRepo,
		Enqueuer:       enqueuer,
	}
}

// MercadoPago always answers 200. A non-2xx makes the provider hammer the
// endpoint with retries for days; failures are recorded internally instead.
func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	var notification request.MercadoPagoWebhook
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		slog.Warn("unparseable mercado pago webhook body", "error", err)
	}

	// Some delivery modes put everything in the query string
	eventType := notification.Type
	if eventType == "" {
		eventType = c.Query("type")
	}
	externalID := notification.Data.ID
	if externalID == "" {
		externalID = c.Query("data.id")
	}
	if externalID == "" {
		externalID = c.Query("id")
	}

	if externalID == "" {
		slog.Warn("mercado pago webhook without payment id")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := h.PaymentUsecase.HandleMercadoPagoWebhook(
		c.Request.Context(), eventType, externalID, string(rawBody)); err != nil {
		slog.Error("mercado pago webhook processing failed",
			"external_id", externalID, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PaymentApproved lets trusted internal callers force a dispatch for an
// already-approved transaction, e.g. after fixing bad checkout data.
func (h *WebhookHandler) PaymentApproved(c *gin.Context) {
	var body struct {
		TransactionID    string `json:"transaction_id" binding:"required"`
		PaymentRequestID string `json:"payment_request_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	tx, err := h.TxRepo.GetTransactionByID(body.TransactionID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "transaction not found"})
		return
	}
	if tx.Status != domain.TxStatusApproved {
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: "transaction is not approved"})
		return
	}
	if body.PaymentRequestID != "" && body.PaymentRequestID != tx.PaymentRequestID {
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: "payment_request_id mismatch"})
		return
	}

	queueItemID, err := h.Enqueuer.Enqueue(c.Request.Context(), tx.ID, tx.PaymentRequestID, tx.ExternalID)
	if err != nil {
		slog.Error("failed to enqueue manual dispatch", "transaction_id", tx.ID, "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to enqueue dispatch"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "enqueued", "queue_item_id": queueItemID})
}

// Expay rejects malformed notifications outright; the provider resends with
// the fields filled in.
func (h *WebhookHandler) Expay(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "unreadable body"})
		return
	}

	var notification expay.WebhookNotification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid payload"})
		return
	}
	if notification.Token == "" || notification.InvoiceID == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "missing token or invoice_id"})
		return
	}

	if err := h.PaymentUsecase.HandleExpayWebhook(c.Request.Context(), notification, string(rawBody)); err != nil {
		if errors.Is(err, domain.ErrPaymentRequestNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "payment request not found"})
			return
		}
		slog.Error("expay webhook processing failed",
			"invoice_id", notification.InvoiceID, "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "webhook processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

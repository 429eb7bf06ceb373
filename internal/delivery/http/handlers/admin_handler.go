package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viralizamos/payment-service/internal/delivery/http/dto/request"
	"github.com/viralizamos/payment-service/internal/delivery/http/dto/response"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/usecase"
	"github.com/viralizamos/payment-service/internal/usecase/dispatch"
)

// AdminHandler is the operator surface: reconciliation runs, queue inspection
// and manual requeue of exhausted items.
type AdminHandler struct {
	ReconcileUsecase usecase.ReconcileUsecase
	DispatchUsecase  dispatch.DispatchUsecase
}

func NewAdminHandler(reconcileUC usecase.ReconcileUsecase, dispatchUC dispatch.DispatchUsecase) *AdminHandler {
	return &AdminHandler{
		ReconcileUsecase: reconcileUC,
		DispatchUsecase:  dispatchUC,
	}
}

func (h *AdminHandler) SyncStatus(c *gin.Context) {
	// The body is optional: an empty POST runs the sweep with defaults
	var body request.SyncStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	report, err := h.ReconcileUsecase.SyncStatuses(c.Request.Context(), body.DaysAgo, body.Limit)
	if err != nil {
		slog.Error("reconciliation sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) CheckStatus(c *gin.Context) {
	var body request.CheckStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.ReconcileUsecase.CheckStatus(c.Request.Context(), body.PaymentRequestID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentRequestNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "payment request not found"})
			return
		}
		slog.Error("status check failed", "request_ref", body.PaymentRequestID, "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "status check failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) QueueStatus(c *gin.Context) {
	stats, err := h.DispatchUsecase.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to read queue stats"})
		return
	}
	c.JSON(http.StatusOK, response.QueueStatsResponse{
		Pending:                 stats.Pending,
		Processed:               stats.Processed,
		Failed:                  stats.Failed,
		OldestPendingAgeSeconds: stats.OldestPendingAge.Seconds(),
	})
}

func (h *AdminHandler) Requeue(c *gin.Context) {
	var body request.RequeueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	item, err := h.DispatchUsecase.RequeueFailed(body.QueueItemID)
	if err != nil {
		if errors.Is(err, domain.ErrQueueItemNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "queue item not found or not failed"})
			return
		}
		slog.Error("requeue failed", "queue_item_id", body.QueueItemID, "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "requeue failed"})
		return
	}
	c.JSON(http.StatusOK, response.RequeueResponse{
		QueueItemID: item.ID,
		Status:      string(item.Status),
	})
}

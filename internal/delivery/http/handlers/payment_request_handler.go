package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viralizamos/payment-service/internal/delivery/http/dto/request"
	"github.com/viralizamos/payment-service/internal/delivery/http/dto/response"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/usecase"
)

type PaymentRequestHandler struct {
	RequestUsecase usecase.PaymentRequestUsecase
	PaymentUsecase usecase.PaymentUsecase
}

func NewPaymentRequestHandler(requestUC usecase.PaymentRequestUsecase, paymentUC usecase.PaymentUsecase) *PaymentRequestHandler {
	return &PaymentRequestHandler{
		RequestUsecase: requestUC,
		PaymentUsecase: paymentUC,
	}
}

func (h *PaymentRequestHandler) Create(c *gin.Context) {
	var body request.CreatePaymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	additionalData := ""
	if body.AdditionalData != nil {
		raw, err := json.Marshal(body.AdditionalData)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid additional_data"})
			return
		}
		additionalData = string(raw)
	}

	created, err := h.RequestUsecase.CreatePaymentRequest(&usecase.CreatePaymentRequestInput{
		Amount:            body.Amount,
		CustomerName:      body.CustomerName,
		CustomerEmail:     body.CustomerEmail,
		CustomerPhone:     body.CustomerPhone,
		ProfileUsername:   body.ProfileUsername,
		ServiceID:         body.ServiceID,
		ServiceName:       body.ServiceName,
		ExternalServiceID: body.ExternalServiceID,
		AdditionalData:    additionalData,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBlockedEmail) {
			c.JSON(http.StatusForbidden, response.ErrorResponse{Error: "checkout not allowed"})
			return
		}
		slog.Error("failed to create payment request", "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to create payment request"})
		return
	}

	c.JSON(http.StatusCreated, toPaymentRequestResponse(created))
}

func (h *PaymentRequestHandler) GetByToken(c *gin.Context) {
	found, err := h.RequestUsecase.GetByToken(c.Param("token"))
	if err != nil {
		if errors.Is(err, domain.ErrPaymentRequestNotFound) || errors.Is(err, domain.ErrInvalidToken) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "payment request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to load payment request"})
		return
	}

	c.JSON(http.StatusOK, toPaymentRequestResponse(found))
}

// CreatePixCharge issues (or returns the open) PIX charge for a checkout token.
func (h *PaymentRequestHandler) CreatePixCharge(c *gin.Context) {
	var body request.CreatePixPayment
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	tx, err := h.PaymentUsecase.CreatePixCharge(c.Request.Context(), body.Token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentRequestNotFound):
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "payment request not found"})
		case errors.Is(err, domain.ErrRequestNotPayable):
			c.JSON(http.StatusConflict, response.ErrorResponse{Error: "payment request is not payable"})
		default:
			slog.Error("failed to create pix charge", "error", err)
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to create pix charge"})
		}
		return
	}

	c.JSON(http.StatusCreated, response.PixChargeResponse{
		TransactionID: tx.ID,
		Status:        string(tx.Status),
		Amount:        tx.Amount,
		PixCode:       tx.PixCode,
		PixQRCode:     tx.PixQRCode,
	})
}

func toPaymentRequestResponse(pr *domain.PaymentRequest) response.PaymentRequestResponse {
	return response.PaymentRequestResponse{
		ID:              pr.ID,
		Token:           pr.Token,
		Amount:          pr.Amount,
		Status:          string(pr.Status),
		CustomerName:    pr.Customer.Name,
		CustomerEmail:   pr.Customer.Email,
		ServiceID:       pr.Service.ServiceID,
		ServiceName:     pr.Service.ServiceName,
		ProfileUsername: pr.Service.ProfileUsername,
		ExpiresAt:       pr.ExpiresAt,
		CreatedAt:       pr.CreatedAt,
	}
}

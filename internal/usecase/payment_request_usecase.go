package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/jaevor/go-nanoid"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/metrics"
)

type CreatePaymentRequestInput struct {
	Amount            float64
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	ProfileUsername   string
	ServiceID         string
	ServiceName       string
	ExternalServiceID string
	AdditionalData    string
}

type PaymentRequestUsecase interface {
	CreatePaymentRequest(input *CreatePaymentRequestInput) (*domain.PaymentRequest, error)
	GetByToken(token string) (*domain.PaymentRequest, error)
	GetByID(requestID string) (*domain.PaymentRequest, error)
	ExpireOverdue() (int64, error)
}

type DefaultPaymentRequestUsecase struct {
	RequestRepo domain.PaymentRequestRepository
	RequestTTL  time.Duration
	Metrics     *metrics.PaymentMetrics

	newToken func() string
}

func NewDefaultPaymentRequestUsecase(
	requestRepo domain.PaymentRequestRepository,
	requestTTL time.Duration,
	paymentMetrics *metrics.PaymentMetrics) *DefaultPaymentRequestUsecase {

	// 21-char url-safe token, the public handle for a checkout
	tokenGen, err := gonanoid.Standard(21)
	if err != nil {
		panic(fmt.Sprintf("failed to init token generator: %v", err))
	}

	return &DefaultPaymentRequestUsecase{
		RequestRepo: requestRepo,
		RequestTTL:  requestTTL,
		Metrics:     paymentMetrics,
		newToken:    tokenGen,
	}
}

func (uc *DefaultPaymentRequestUsecase) CreatePaymentRequest(input *CreatePaymentRequestInput) (*domain.PaymentRequest, error) {
	if IsBlockedEmail(input.CustomerEmail) {
		slog.Warn("checkout blocked by email blocklist", "email", input.CustomerEmail)
		return nil, domain.ErrBlockedEmail
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("invalid amount %.2f", input.Amount)
	}

	now := time.Now()
	request := &domain.PaymentRequest{
		ID:     uuid.New().String(),
		Token:  uc.newToken(),
		Amount: input.Amount,
		Status: domain.RequestStatusPending,
		Customer: domain.CustomerInfo{
			Name:  input.CustomerName,
			Email: input.CustomerEmail,
			Phone: input.CustomerPhone,
		},
		Service: domain.ServiceSelection{
			ServiceID:         input.ServiceID,
			ServiceName:       input.ServiceName,
			ExternalServiceID: input.ExternalServiceID,
			ProfileUsername:   input.ProfileUsername,
			AdditionalData:    input.AdditionalData,
		},
		ExpiresAt: now.Add(uc.RequestTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.RequestRepo.CreatePaymentRequest(request); err != nil {
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}

	if uc.Metrics != nil {
		uc.Metrics.PaymentRequestsCreatedTotal.WithLabelValues(request.Service.ServiceID).Inc()
	}

	slog.Info("payment request created", "request_id", request.ID, "token", request.Token, "amount", request.Amount)
	return request, nil
}

func (uc *DefaultPaymentRequestUsecase) GetByToken(token string) (*domain.PaymentRequest, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	return uc.RequestRepo.GetPaymentRequestByToken(token)
}

func (uc *DefaultPaymentRequestUsecase) GetByID(requestID string) (*domain.PaymentRequest, error) {
	return uc.RequestRepo.GetPaymentRequestByID(requestID)
}

func (uc *DefaultPaymentRequestUsecase) ExpireOverdue() (int64, error) {
	expired, err := uc.RequestRepo.ExpireOverdue(time.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		if uc.Metrics != nil {
			uc.Metrics.PaymentRequestsExpiredTotal.Add(float64(expired))
		}
		slog.Info("expired overdue payment requests", "count", expired)
	}
	return expired, nil
}

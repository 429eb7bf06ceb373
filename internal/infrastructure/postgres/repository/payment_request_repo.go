package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPaymentRequestRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentRequestRepository(db *gorm.DB) *DefaultPaymentRequestRepository {
	return &DefaultPaymentRequestRepository{DB: db}
}

func (r *DefaultPaymentRequestRepository) CreatePaymentRequest(request *domain.PaymentRequest) error {
	requestModel := mappers.ToGORMPaymentRequest(request)
	if err := r.DB.Create(requestModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultPaymentRequestRepository) GetPaymentRequestByID(requestID string) (*domain.PaymentRequest, error) {
	var requestModel models.PaymentRequestModel
	if err := r.DB.First(&requestModel, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentRequestNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPaymentRequest(&requestModel), nil
}

func (r *DefaultPaymentRequestRepository) GetPaymentRequestByToken(token string) (*domain.PaymentRequest, error) {
	var requestModel models.PaymentRequestModel
	if err := r.DB.First(&requestModel, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentRequestNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPaymentRequest(&requestModel), nil
}

func (r *DefaultPaymentRequestRepository) UpdatePaymentRequestStatus(requestID string, newStatus domain.PaymentRequestStatus) error {
	return r.DB.Model(&models.PaymentRequestModel{}).
		Where("id = ?", requestID).
		Update("status", newStatus).Error
}

func (r *DefaultPaymentRequestRepository) MarkCompleted(requestID, processedPaymentID string) error {
	now := time.Now()
	return r.DB.Model(&models.PaymentRequestModel{}).
		Where("id = ?", requestID).
		Updates(map[string]interface{}{
			"status":               domain.RequestStatusCompleted,
			"processed_at":         &now,
			"processed_payment_id": processedPaymentID,
		}).Error
}

func (r *DefaultPaymentRequestRepository) UpdateAdditionalData(requestID, additionalData string) error {
	return r.DB.Model(&models.PaymentRequestModel{}).
		Where("id = ?", requestID).
		Update("additional_data", additionalData).Error
}

func (r *DefaultPaymentRequestRepository) FindForReconciliation(filters domain.PaymentRequestFilters) ([]*domain.PaymentRequest, error) {
	var requestModels []models.PaymentRequestModel

	query := r.DB.Model(&models.PaymentRequestModel{})

	if !filters.CreatedAfter.IsZero() {
		query = query.Where("payment_request_models.created_at >= ?", filters.CreatedAfter)
	}
	if len(filters.ExcludeStatuses) > 0 {
		query = query.Where("payment_request_models.status NOT IN (?)", filters.ExcludeStatuses)
	}
	if filters.WithApprovedTx {
		query = query.Where(
			"EXISTS (SELECT 1 FROM transaction_models t WHERE t.payment_request_id = payment_request_models.id AND t.status = ?)",
			domain.TxStatusApproved,
		)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	err := query.
		Order("payment_request_models.created_at DESC").
		Limit(limit).
		Find(&requestModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find payment requests: %w", err)
	}

	requests := make([]*domain.PaymentRequest, len(requestModels))
	for i, requestModel := range requestModels {
		requests[i] = mappers.ToDomainPaymentRequest(&requestModel)
	}
	return requests, nil
}

func (r *DefaultPaymentRequestRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.DB.Model(&models.PaymentRequestModel{}).
		Where("status = ? AND expires_at < ?", domain.RequestStatusPending, now).
		Update("status", domain.RequestStatusExpired)
	return result.RowsAffected, result.Error
}

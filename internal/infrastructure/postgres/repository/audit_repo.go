package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type PGWebhookLogRepository struct {
	db *gorm.DB
}

func NewPGWebhookLogRepository(db *gorm.DB) *PGWebhookLogRepository {
	return &PGWebhookLogRepository{db: db}
}

// nullableID maps an absent reference to NULL so uuid columns accept it.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func (r *PGWebhookLogRepository) LogWebhook(entry *domain.WebhookLog) error {
	model := models.WebhookLogModel{
		ID:            uuid.New().String(),
		TransactionID: nullableID(entry.TransactionID),
		Type:          entry.Type,
		Event:         entry.Event,
		Data:          entry.Data,
		Processed:     entry.Processed,
		Error:         entry.Error,
		CreatedAt:     time.Now(),
	}
	return r.db.Create(&model).Error
}

type PGNotificationLogRepository struct {
	db *gorm.DB
}

func NewPGNotificationLogRepository(db *gorm.DB) *PGNotificationLogRepository {
	return &PGNotificationLogRepository{db: db}
}

func (r *PGNotificationLogRepository) LogNotification(entry *domain.NotificationLog) error {
	model := models.NotificationLogModel{
		ID:            uuid.New().String(),
		TransactionID: entry.TransactionID,
		Type:          entry.Type,
		TargetURL:     entry.TargetURL,
		Status:        string(entry.Status),
		Payload:       entry.Payload,
		Response:      entry.Response,
		ErrorMessage:  entry.ErrorMessage,
		ErrorStack:    entry.ErrorStack,
		CreatedAt:     time.Now(),
	}
	return r.db.Create(&model).Error
}

func (r *PGNotificationLogRepository) ListByTransactionID(transactionID string) ([]*domain.NotificationLog, error) {
	var logModels []models.NotificationLogModel
	err := r.db.
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&logModels).Error
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.NotificationLog, len(logModels))
	for i, m := range logModels {
		logs[i] = &domain.NotificationLog{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			Type:          m.Type,
			TargetURL:     m.TargetURL,
			Status:        domain.NotificationLogStatus(m.Status),
			Payload:       m.Payload,
			Response:      m.Response,
			ErrorMessage:  m.ErrorMessage,
			ErrorStack:    m.ErrorStack,
			CreatedAt:     m.CreatedAt,
		}
	}
	return logs, nil
}

type PGProviderResponseLogRepository struct {
	db *gorm.DB
}

func NewPGProviderResponseLogRepository(db *gorm.DB) *PGProviderResponseLogRepository {
	return &PGProviderResponseLogRepository{db: db}
}

func (r *PGProviderResponseLogRepository) LogProviderResponse(entry *domain.ProviderResponseLog) error {
	model := models.ProviderResponseLogModel{
		ID:               uuid.New().String(),
		PaymentRequestID: entry.PaymentRequestID,
		ProviderID:       entry.ProviderID,
		OrderID:          entry.OrderID,
		Response:         entry.Response,
		CreatedAt:        time.Now(),
	}
	return r.db.Create(&model).Error
}

func (r *PGProviderResponseLogRepository) LatestByPaymentRequestID(requestID string) (*domain.ProviderResponseLog, error) {
	var model models.ProviderResponseLogModel
	err := r.db.
		Where("payment_request_id = ?", requestID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.ProviderResponseLog{
		ID:               model.ID,
		PaymentRequestID: model.PaymentRequestID,
		ProviderID:       model.ProviderID,
		OrderID:          model.OrderID,
		Response:         model.Response,
		CreatedAt:        model.CreatedAt,
	}, nil
}

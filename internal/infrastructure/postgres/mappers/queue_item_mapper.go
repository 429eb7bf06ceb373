package mappers

import (
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainQueueItem(model *models.QueueItemModel) *domain.QueueItem {
	return &domain.QueueItem{
		ID:               model.ID,
		Type:             model.Type,
		Status:           model.Status,
		PaymentRequestID: model.PaymentRequestID,
		Priority:         model.Priority,
		Attempts:         model.Attempts,
		LastError:        model.LastError,
		MetadataJSON:     model.Metadata,
		NextAttemptAt:    model.NextAttemptAt,
		ProcessedAt:      model.ProcessedAt,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMQueueItem(item *domain.QueueItem) *models.QueueItemModel {
	return &models.QueueItemModel{
		ID:               item.ID,
		Type:             item.Type,
		Status:           item.Status,
		PaymentRequestID: item.PaymentRequestID,
		Priority:         item.Priority,
		Attempts:         item.Attempts,
		LastError:        item.LastError,
		Metadata:         item.MetadataJSON,
		NextAttemptAt:    item.NextAttemptAt,
		ProcessedAt:      item.ProcessedAt,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

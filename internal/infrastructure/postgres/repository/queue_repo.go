package repository

import (
	"errors"
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultQueueRepository struct {
	DB *gorm.DB
}

func NewDefaultQueueRepository(db *gorm.DB) *DefaultQueueRepository {
	return &DefaultQueueRepository{DB: db}
}

func (r *DefaultQueueRepository) CreateQueueItem(item *domain.QueueItem) error {
	itemModel := mappers.ToGORMQueueItem(item)
	if err := r.DB.Create(itemModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultQueueRepository) GetQueueItemByID(itemID string) (*domain.QueueItem, error) {
	var itemModel models.QueueItemModel
	if err := r.DB.First(&itemModel, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQueueItemNotFound
		}
		return nil, err
	}
	return mappers.ToDomainQueueItem(&itemModel), nil
}

func (r *DefaultQueueRepository) FindDue(now time.Time, limit int) ([]*domain.QueueItem, error) {
	var itemModels []models.QueueItemModel

	err := r.DB.
		Where("status = ? AND attempts < ?", domain.QueueStatusPending, domain.MaxDispatchAttempts).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("priority DESC, created_at ASC").
		Limit(limit).
		Find(&itemModels).Error
	if err != nil {
		return nil, err
	}

	items := make([]*domain.QueueItem, len(itemModels))
	for i, itemModel := range itemModels {
		items[i] = mappers.ToDomainQueueItem(&itemModel)
	}
	return items, nil
}

func (r *DefaultQueueRepository) FindByTransactionID(transactionID string) (*domain.QueueItem, error) {
	var itemModel models.QueueItemModel
	err := r.DB.
		Where("metadata ->> 'transaction_id' = ?", transactionID).
		Order("created_at DESC").
		First(&itemModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQueueItemNotFound
		}
		return nil, err
	}
	return mappers.ToDomainQueueItem(&itemModel), nil
}

func (r *DefaultQueueRepository) MarkProcessed(itemID string, processedAt time.Time, metadataJSON string) error {
	return r.DB.Model(&models.QueueItemModel{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"status":       domain.QueueStatusProcessed,
			"processed_at": &processedAt,
			"metadata":     metadataJSON,
		}).Error
}

func (r *DefaultQueueRepository) RecordFailure(itemID string, attempts int, lastError string, nextAttemptAt time.Time, terminal bool) error {
	status := domain.QueueStatusPending
	if terminal {
		status = domain.QueueStatusFailed
	}
	return r.DB.Model(&models.QueueItemModel{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        attempts,
			"last_error":      lastError,
			"next_attempt_at": &nextAttemptAt,
		}).Error
}

func (r *DefaultQueueRepository) Requeue(itemID string) error {
	result := r.DB.Model(&models.QueueItemModel{}).
		Where("id = ? AND status = ?", itemID, domain.QueueStatusFailed).
		Updates(map[string]interface{}{
			"status":          domain.QueueStatusPending,
			"attempts":        0,
			"last_error":      "",
			"next_attempt_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrQueueItemNotFound
	}
	return nil
}

func (r *DefaultQueueRepository) Stats() (*domain.QueueStats, error) {
	stats := &domain.QueueStats{}

	counts := []struct {
		status domain.QueueItemStatus
		dest   *int64
	}{
		{domain.QueueStatusPending, &stats.Pending},
		{domain.QueueStatusProcessed, &stats.Processed},
		{domain.QueueStatusFailed, &stats.Failed},
	}
	for _, c := range counts {
		if err := r.DB.Model(&models.QueueItemModel{}).
			Where("status = ?", c.status).
			Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var oldest models.QueueItemModel
	err := r.DB.
		Where("status = ?", domain.QueueStatusPending).
		Order("created_at ASC").
		First(&oldest).Error
	if err == nil {
		stats.OldestPendingAge = time.Since(oldest.CreatedAt)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return stats, nil
}

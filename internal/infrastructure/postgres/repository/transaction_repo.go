package repository

import (
	"errors"
	"time"

	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) CreateTransaction(tx *domain.Transaction) error {
	txModel := mappers.ToGORMTransaction(tx)
	if err := r.DB.Create(txModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultTransactionRepository) GetTransactionByID(txID string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	if err := r.DB.First(&txModel, "id = ?", txID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&txModel), nil
}

func (r *DefaultTransactionRepository) GetTransactionByExternalID(provider, externalID string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	err := r.DB.First(&txModel, "provider = ? AND external_id = ?", provider, externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&txModel), nil
}

func (r *DefaultTransactionRepository) GetPendingByPaymentRequestID(requestID string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	err := r.DB.First(&txModel, "payment_request_id = ? AND status = ?", requestID, domain.TxStatusPending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&txModel), nil
}

func (r *DefaultTransactionRepository) GetLatestByPaymentRequestID(requestID string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	err := r.DB.
		Where("payment_request_id = ?", requestID).
		Order("created_at DESC").
		First(&txModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&txModel), nil
}

func (r *DefaultTransactionRepository) HasApprovedTransaction(requestID string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.TransactionModel{}).
		Where("payment_request_id = ? AND status = ?", requestID, domain.TxStatusApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *DefaultTransactionRepository) UpdateTransactionStatus(txID string, newStatus domain.TransactionStatus) error {
	return r.DB.Model(&models.TransactionModel{}).
		Where("id = ?", txID).
		Update("status", newStatus).Error
}

func (r *DefaultTransactionRepository) UpdateTransactionMetadata(txID, metadataJSON string) error {
	return r.DB.Model(&models.TransactionModel{}).
		Where("id = ?", txID).
		Update("metadata", metadataJSON).Error
}

// MarkProcessed is the dedup gate: the conditional update only wins once,
// row-level consistency in postgres does the locking for us.
func (r *DefaultTransactionRepository) MarkProcessed(txID string, processedAt time.Time) (bool, error) {
	result := r.DB.Model(&models.TransactionModel{}).
		Where("id = ? AND processed_at IS NULL", txID).
		Update("processed_at", &processedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultTransactionRepository) FindApprovedUnprocessed(before time.Time, limit int) ([]*domain.Transaction, error) {
	var txModels []models.TransactionModel
	err := r.DB.
		Where("status = ? AND processed_at IS NULL AND updated_at < ?", domain.TxStatusApproved, before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&txModels).Error
	if err != nil {
		return nil, err
	}

	txs := make([]*domain.Transaction, len(txModels))
	for i := range txModels {
		txs[i] = mappers.ToDomainTransaction(&txModels[i])
	}
	return txs, nil
}

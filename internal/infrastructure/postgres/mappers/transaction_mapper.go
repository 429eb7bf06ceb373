package mappers

import (
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:               model.ID,
		PaymentRequestID: model.PaymentRequestID,
		Provider:         model.Provider,
		ExternalID:       model.ExternalID,
		Status:           model.Status,
		Method:           model.Method,
		Amount:           model.Amount,
		PixCode:          model.PixCode,
		PixQRCode:        model.PixQRCode,
		MetadataJSON:     model.Metadata,
		ProcessedAt:      model.ProcessedAt,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMTransaction(tx *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:               tx.ID,
		PaymentRequestID: tx.PaymentRequestID,
		Provider:         tx.Provider,
		ExternalID:       tx.ExternalID,
		Status:           tx.Status,
		Method:           tx.Method,
		Amount:           tx.Amount,
		PixCode:          tx.PixCode,
		PixQRCode:        tx.PixQRCode,
		Metadata:         tx.MetadataJSON,
		ProcessedAt:      tx.ProcessedAt,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}

package mappers

import (
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainPaymentRequest(model *models.PaymentRequestModel) *domain.PaymentRequest {
	return &domain.PaymentRequest{
		ID:     model.ID,
		Token:  model.Token,
		Amount: model.Amount,
		Status: model.Status,
		Customer: domain.CustomerInfo{
			Name:  model.CustomerName,
			Email: model.CustomerEmail,
			Phone: model.CustomerPhone,
		},
		Service: domain.ServiceSelection{
			ServiceID:         model.ServiceID,
			ServiceName:       model.ServiceName,
			ExternalServiceID: model.ExternalServiceID,
			ProfileUsername:   model.ProfileUsername,
			AdditionalData:    model.AdditionalData,
		},
		ProcessedPaymentID: model.ProcessedPaymentID,
		ExpiresAt:          model.ExpiresAt,
		ProcessedAt:        model.ProcessedAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMPaymentRequest(request *domain.PaymentRequest) *models.PaymentRequestModel {
	return &models.PaymentRequestModel{
		ID:                 request.ID,
		Token:              request.Token,
		Amount:             request.Amount,
		Status:             request.Status,
		CustomerName:       request.Customer.Name,
		CustomerEmail:      request.Customer.Email,
		CustomerPhone:      request.Customer.Phone,
		ProfileUsername:    request.Service.ProfileUsername,
		ServiceID:          request.Service.ServiceID,
		ServiceName:        request.Service.ServiceName,
		ExternalServiceID:  request.Service.ExternalServiceID,
		AdditionalData:     request.Service.AdditionalData,
		ProcessedPaymentID: request.ProcessedPaymentID,
		ExpiresAt:          request.ExpiresAt,
		ProcessedAt:        request.ProcessedAt,
		CreatedAt:          request.CreatedAt,
		UpdatedAt:          request.UpdatedAt,
	}
}

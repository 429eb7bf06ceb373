package domain

import "time"

type PaymentRequestStatus string

const (
	RequestStatusPending    PaymentRequestStatus = "pending"
	RequestStatusProcessing PaymentRequestStatus = "processing"
	RequestStatusCompleted  PaymentRequestStatus = "completed"
	RequestStatusFailed     PaymentRequestStatus = "failed"
	RequestStatusExpired    PaymentRequestStatus = "expired"
	RequestStatusCancelled  PaymentRequestStatus = "cancelled"
	RequestStatusPartial    PaymentRequestStatus = "partial"
)

// TerminalRequestStatuses are never touched by the reconciliation sweep
func (s PaymentRequestStatus) Terminal() bool {
	switch s {
	case RequestStatusFailed, RequestStatusExpired, RequestStatusCancelled:
		return true
	}
	return false
}

type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

type ServiceSelection struct {
	ServiceID         string
	ServiceName       string
	ExternalServiceID string
	ProfileUsername   string
	// AdditionalData keeps the raw checkout payload (posts, quantities, service blob)
	AdditionalData string
}

type PaymentRequest struct {
	ID                 string
	Token              string
	Amount             float64
	Status             PaymentRequestStatus
	Customer           CustomerInfo
	Service            ServiceSelection
	ProcessedPaymentID string
	ExpiresAt          time.Time
	ProcessedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type PaymentRequestFilters struct {
	CreatedAfter    time.Time
	ExcludeStatuses []PaymentRequestStatus
	WithApprovedTx  bool
	Limit           int
}

type PaymentRequestRepository interface {
	CreatePaymentRequest(request *PaymentRequest) error
	GetPaymentRequestByID(requestID string) (*PaymentRequest, error)
	GetPaymentRequestByToken(token string) (*PaymentRequest, error)
	UpdatePaymentRequestStatus(requestID string, newStatus PaymentRequestStatus) error
	MarkCompleted(requestID, processedPaymentID string) error
	UpdateAdditionalData(requestID, additionalData string) error
	FindForReconciliation(filters PaymentRequestFilters) ([]*PaymentRequest, error)
	ExpireOverdue(now time.Time) (int64, error)
}

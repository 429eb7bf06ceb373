package domain

import "errors"

var (
	ErrPaymentRequestNotFound = errors.New("payment request not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrQueueItemNotFound      = errors.New("queue item not found")
	ErrBlockedEmail           = errors.New("customer email is blocked")
	ErrRequestNotPayable      = errors.New("payment request cannot be paid in its current status")
	ErrAlreadyProcessed       = errors.New("transaction already processed")
	ErrInvalidToken           = errors.New("invalid payment request token")
	ErrUnknownProviderStatus  = errors.New("unknown provider status")
	ErrMissingExternalOrderID = errors.New("external order id not found")
)

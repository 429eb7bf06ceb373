package kafka

// PaymentApprovedEvent is published when a provider reports a payment as
// approved. The dispatch worker consumes it to hand the payment over to the
// orders service.
type PaymentApprovedEvent struct {
	TransactionID    string  `json:"transaction_id"`
	PaymentRequestID string  `json:"payment_request_id"`
	ExternalID       string  `json:"external_id"`
	Provider         string  `json:"provider"`
	Amount           float64 `json:"amount"`
	QueueItemID      string  `json:"queue_item_id"`
}

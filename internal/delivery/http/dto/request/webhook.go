package request

// MercadoPagoWebhook is the provider's notification shape. Only the payment
// id matters; current state is re-fetched from the API.
type MercadoPagoWebhook struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

type RequeueRequest struct {
	QueueItemID string `json:"queue_item_id" binding:"required"`
}

type CheckStatusRequest struct {
	PaymentRequestID string `json:"payment_request_id" binding:"required"`
}

// SyncStatusRequest narrows a reconciliation sweep. Both fields are optional;
// the usecase falls back to its defaults.
type SyncStatusRequest struct {
	DaysAgo int `json:"daysAgo"`
	Limit   int `json:"limit"`
}

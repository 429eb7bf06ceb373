package response

type QueueStatsResponse struct {
	Pending                 int64   `json:"pending"`
	Processed               int64   `json:"processed"`
	Failed                  int64   `json:"failed"`
	OldestPendingAgeSeconds float64 `json:"oldest_pending_age_seconds"`
}

type RequeueResponse struct {
	QueueItemID string `json:"queue_item_id"`
	Status      string `json:"status"`
}

type CheckStatusResponse struct {
	PaymentRequestID string `json:"payment_request_id"`
	Status           string `json:"status"`
}

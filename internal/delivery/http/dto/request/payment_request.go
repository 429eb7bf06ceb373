package request

type CreatePaymentRequest struct {
	Amount            float64 `json:"amount" binding:"required,gt=0"`
	CustomerName      string  `json:"customer_name" binding:"required"`
	CustomerEmail     string  `json:"customer_email" binding:"required,email"`
	CustomerPhone     string  `json:"customer_phone"`
	ProfileUsername   string  `json:"profile_username"`
	ServiceID         string  `json:"service_id"`
	ServiceName       string  `json:"service_name"`
	ExternalServiceID string  `json:"external_service_id"`

	// AdditionalData carries the raw checkout payload (posts, quantities)
	AdditionalData map[string]any `json:"additional_data"`
}

type CreatePixPayment struct {
	Token string `json:"token" binding:"required"`
}

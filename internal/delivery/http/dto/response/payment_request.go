package response

import "time"

type PaymentRequestResponse struct {
	ID              string         `json:"id"`
	Token           string         `json:"token"`
	Amount          float64        `json:"amount"`
	Status          string         `json:"status"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	ServiceID       string         `json:"service_id"`
	ServiceName     string         `json:"service_name"`
	ProfileUsername string         `json:"profile_username"`
	PaymentURL      string         `json:"payment_url,omitempty"`
	ExpiresAt       time.Time      `json:"expires_at"`
	CreatedAt       time.Time      `json:"created_at"`
}

type PixChargeResponse struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	PixCode       string  `json:"pix_code"`
	PixQRCode     string  `json:"pix_qrcode"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

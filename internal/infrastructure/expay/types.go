package expay

import "github.com/viralizamos/payment-service/internal/domain"

type Item struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Qty         int     `json:"qty"`
}

type PaymentRequest struct {
	MerchantKey        string  `json:"merchant_key"`
	CurrencyCode       string  `json:"currency_code"`
	InvoiceID          string  `json:"invoice_id"`
	InvoiceDescription string  `json:"invoice_description"`
	Total              float64 `json:"total"`
	Devedor            string  `json:"devedor"`
	Email              string  `json:"email"`
	CpfCnpj            string  `json:"cpf_cnpj"`
	NotificationURL    string  `json:"notification_url"`
	Telefone           string  `json:"telefone"`
	Items              []Item  `json:"items"`
}

type PaymentResponse struct {
	Result         bool   `json:"result"`
	SuccessMessage string `json:"success_message"`
	QRCodeBase64   string `json:"qrcode_base64"`
	EMV            string `json:"emv"`
	PixURL         string `json:"pix_url"`
	BacenURL       string `json:"bacen_url"`
}

// WebhookNotification is what the provider POSTs to our webhook. The token is
// then exchanged for full transaction details on the status endpoint.
type WebhookNotification struct {
	DateNotification string `json:"date_notification"`
	InvoiceID        string `json:"invoice_id"`
	Token            string `json:"token"`
}

type StatusResponse struct {
	Result             bool   `json:"result"`
	SuccessMessage     string `json:"success_message"`
	TransactionRequest struct {
		Items              []Item  `json:"items"`
		InvoiceID          string  `json:"invoice_id"`
		InvoiceDescription string  `json:"invoice_description"`
		Total              float64 `json:"total"`
		Devedor            string  `json:"devedor"`
		Email              string  `json:"email"`
		CpfCnpj            string  `json:"cpf_cnpj"`
		NotificationURL    string  `json:"notification_url"`
		Telefone           string  `json:"telefone"`
		Status             string  `json:"status"`
		PixCode            *string `json:"pix_code"`
	} `json:"transaction_request"`
}

// MapStatus translates the provider status vocabulary to ours. Unknown values
// fall back to pending, matching the provider's own retry behavior.
func MapStatus(status string) domain.TransactionStatus {
	switch status {
	case "paid":
		return domain.TxStatusApproved
	case "canceled":
		return domain.TxStatusCancelled
	case "refunded":
		return domain.TxStatusRefunded
	case "pending":
		return domain.TxStatusPending
	default:
		return domain.TxStatusPending
	}
}

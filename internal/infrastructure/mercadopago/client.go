package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/viralizamos/payment-service/internal/domain"
)

var ErrMissingAccessToken = errors.New("missing mercado pago access token")

// Client wraps the Mercado Pago SDK. Webhooks only carry the payment id, so
// the current payment state is always re-fetched from the API.
type Client struct {
	payments payment.Client
}

func NewClient(accessToken string) (*Client, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("creating mercado pago sdk config: %w", err)
	}
	return &Client{payments: payment.NewClient(cfg)}, nil
}

// PaymentDetails is the subset of the provider payment we act on, plus the
// raw response for the transaction metadata audit trail.
type PaymentDetails struct {
	ID          string
	Status      string
	RawResponse string
}

func (c *Client) GetPayment(ctx context.Context, externalID string) (*PaymentDetails, error) {
	id, err := strconv.Atoi(externalID)
	if err != nil {
		return nil, fmt.Errorf("invalid mercado pago payment id %q: %w", externalID, err)
	}

	resp, err := c.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching mercado pago payment %d: %w", id, err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	return &PaymentDetails{
		ID:          strconv.Itoa(resp.ID),
		Status:      resp.Status,
		RawResponse: string(raw),
	}, nil
}

// MapStatus translates Mercado Pago's status vocabulary to ours. An unknown
// status returns ok=false so the caller keeps the current one and logs it.
func MapStatus(mpStatus string) (domain.TransactionStatus, bool) {
	switch mpStatus {
	case "approved":
		return domain.TxStatusApproved, true
	case "pending":
		return domain.TxStatusPending, true
	case "in_process":
		return domain.TxStatusProcessing, true
	case "rejected":
		return domain.TxStatusRejected, true
	case "cancelled":
		return domain.TxStatusCancelled, true
	default:
		return "", false
	}
}

package expay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrMissingMerchantKey = errors.New("expay merchant key not configured")

type Client struct {
	BaseURL     string
	MerchantKey string
	httpClient  *http.Client
}

func NewClient(baseURL, merchantKey string) (*Client, error) {
	if merchantKey == "" {
		return nil, ErrMissingMerchantKey
	}
	return &Client{
		BaseURL:     baseURL,
		MerchantKey: merchantKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// CreatePixPayment creates a PIX charge and returns the EMV code plus QR data.
func (c *Client) CreatePixPayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	req.MerchantKey = c.MerchantKey
	req.CurrencyCode = "BRL"

	requestBodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/en/purchase/link", c.BaseURL), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("expay create payment returned status %d", response.StatusCode)
	}

	var paymentResponse PaymentResponse
	if err := json.Unmarshal(responseBodyBytes, &paymentResponse); err != nil {
		return nil, err
	}
	if !paymentResponse.Result {
		return nil, fmt.Errorf("expay rejected payment: %s", paymentResponse.SuccessMessage)
	}
	return &paymentResponse, nil
}

// CheckPaymentStatus exchanges a webhook token for the full transaction state.
func (c *Client) CheckPaymentStatus(ctx context.Context, notification WebhookNotification) (*StatusResponse, error) {
	requestBodyBytes, err := json.Marshal(map[string]string{
		"merchant_key": c.MerchantKey,
		"token":        notification.Token,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/en/request/status", c.BaseURL), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("expay status check returned status %d", response.StatusCode)
	}

	var statusResponse StatusResponse
	if err := json.Unmarshal(responseBodyBytes, &statusResponse); err != nil {
		return nil, err
	}
	return &statusResponse, nil
}

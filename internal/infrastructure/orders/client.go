package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viralizamos/payment-service/internal/domain"
)

// Client talks to the orders microservice: it pushes approved payments as
// fulfillment orders and reads order status back during reconciliation.
type Client struct {
	BaseURL    string
	CreatePath string
	StatusPath string
	APIKey     string
	JWTSecret  string
	httpClient *http.Client
}

func NewClient(baseURL, createPath, statusPath, apiKey, jwtSecret string) *Client {
	return &Client{
		BaseURL:    baseURL,
		CreatePath: createPath,
		StatusPath: statusPath,
		APIKey:     apiKey,
		JWTSecret:  jwtSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type createOrderRequest struct {
	TransactionID         string         `json:"transaction_id"`
	ServiceID             string         `json:"service_id"`
	ExternalPaymentID     string         `json:"external_payment_id"`
	ExternalTransactionID string         `json:"external_transaction_id,omitempty"`
	Amount                float64        `json:"amount"`
	Quantity              int            `json:"quantity"`
	TargetUsername        string         `json:"target_username"`
	CustomerEmail         string         `json:"customer_email"`
	CustomerName          string         `json:"customer_name"`
	PostData              map[string]any `json:"post_data,omitempty"`
	PaymentData           paymentData    `json:"payment_data"`
}

type paymentData struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

type createOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type orderStatusResponse struct {
	Status string `json:"status"`
}

// bearerToken signs a short-lived JWT tying the call to the transaction.
func (c *Client) bearerToken(transactionID string) (string, error) {
	claims := jwt.MapClaims{
		"transaction_id": transactionID,
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.JWTSecret))
}

func (c *Client) CreateOrder(ctx context.Context, req *domain.OrderCreation) (string, string, error) {
	body := createOrderRequest{
		TransactionID:         req.TransactionID,
		ServiceID:             req.ServiceID,
		ExternalPaymentID:     req.IdempotencyKey,
		ExternalTransactionID: req.ExternalID,
		Amount:                req.Amount,
		Quantity:              req.Quantity,
		TargetUsername:        req.TargetUsername,
		CustomerEmail:         req.CustomerEmail,
		CustomerName:          req.CustomerName,
		PostData:              req.PostData,
		PaymentData: paymentData{
			Method: req.PaymentMethod,
			Status: req.PaymentStatus,
		},
	}

	requestBodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", "", err
	}

	token, err := c.bearerToken(req.TransactionID)
	if err != nil {
		return "", "", fmt.Errorf("signing bearer token: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+c.CreatePath, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	response, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", "", err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", "", err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", string(responseBodyBytes),
			fmt.Errorf("orders service returned status %d: %s", response.StatusCode, string(responseBodyBytes))
	}

	var orderResponse createOrderResponse
	if err := json.Unmarshal(responseBodyBytes, &orderResponse); err != nil {
		return "", string(responseBodyBytes), err
	}
	if !orderResponse.Success {
		return "", string(responseBodyBytes),
			fmt.Errorf("orders service refused order: %s", orderResponse.Message)
	}

	return orderResponse.OrderID, string(responseBodyBytes), nil
}

func (c *Client) OrderStatus(ctx context.Context, externalOrderID string) (string, error) {
	query := url.Values{"order_id": {externalOrderID}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+c.StatusPath+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	response, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("orders status check returned status %d", response.StatusCode)
	}

	var statusResponse orderStatusResponse
	if err := json.Unmarshal(responseBodyBytes, &statusResponse); err != nil {
		return "", err
	}
	if statusResponse.Status == "" {
		return "", errors.New("orders status check returned empty status")
	}
	return statusResponse.Status, nil
}

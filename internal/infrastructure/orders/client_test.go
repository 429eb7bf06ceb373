package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralizamos/payment-service/internal/domain"
)

func orderCreation() *domain.OrderCreation {
	return &domain.OrderCreation{
		TransactionID:  "tx-1",
		PaymentID:      "req-1",
		ServiceID:      "svc-1",
		ExternalID:     "ext-1",
		IdempotencyKey: "ext-1_p1",
		Amount:         25,
		Quantity:       100,
		TargetUsername: "maria.insta",
		CustomerEmail:  "maria@example.com",
		CustomerName:   "Maria",
		PaymentMethod:  "pix",
		PaymentStatus:  "approved",
	}
}

func TestCreateOrderSignsAndSends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/create", r.URL.Path)
		require.Equal(t, "ext-1_p1", r.Header.Get("Idempotency-Key"))

		// The bearer token must be an HS256 JWT bound to the transaction
		authHeader := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(authHeader, "Bearer "))
		token, err := jwt.Parse(strings.TrimPrefix(authHeader, "Bearer "), func(t *jwt.Token) (any, error) {
			return []byte("secret"), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, "tx-1", claims["transaction_id"])
		assert.NotNil(t, claims["exp"])

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tx-1", body["transaction_id"])
		assert.Equal(t, "ext-1_p1", body["external_payment_id"])
		assert.Equal(t, "svc-1", body["service_id"])
		assert.Equal(t, float64(100), body["quantity"])

		json.NewEncoder(w).Encode(createOrderResponse{Success: true, OrderID: "ord-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "/api/orders/create", "/api/orders/status", "api-key", "secret")
	orderID, rawResponse, err := client.CreateOrder(context.Background(), orderCreation())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)
	assert.Contains(t, rawResponse, "ord-1")
}

func TestCreateOrderRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createOrderResponse{Success: false, Message: "duplicate order"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "/api/orders/create", "/api/orders/status", "api-key", "secret")
	_, rawResponse, err := client.CreateOrder(context.Background(), orderCreation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate order")
	assert.NotEmpty(t, rawResponse)
}

func TestCreateOrderNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "/api/orders/create", "/api/orders/status", "api-key", "secret")
	_, _, err := client.CreateOrder(context.Background(), orderCreation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestOrderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/status", r.URL.Path)
		require.Equal(t, "ord-1", r.URL.Query().Get("order_id"))
		require.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(orderStatusResponse{Status: "completed"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "/api/orders/create", "/api/orders/status", "api-key", "secret")
	status, err := client.OrderStatus(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", status)
}

func TestOrderStatusEscapesOrderID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ord 1&x=y", r.URL.Query().Get("order_id"))
		json.NewEncoder(w).Encode(orderStatusResponse{Status: "pending"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "/api/orders/create", "/api/orders/status", "api-key", "secret")
	status, err := client.OrderStatus(context.Background(), "ord 1&x=y")
	require.NoError(t, err)
	assert.Equal(t, "pending", status)
}

func TestOrderStatusEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orderStatusResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "/api/orders/create", "/api/orders/status", "api-key", "secret")
	_, err := client.OrderStatus(context.Background(), "ord-1")
	assert.Error(t, err)
}

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralizamos/payment-service/internal/domain"
)

func testRequest(additionalData string) *domain.PaymentRequest {
	return &domain.PaymentRequest{
		ID:     "req-1",
		Token:  "tok",
		Amount: 90,
		Customer: domain.CustomerInfo{
			Name:  "Maria",
			Email: "maria@example.com",
		},
		Service: domain.ServiceSelection{
			ServiceID:       "svc-likes",
			ProfileUsername: "maria.insta",
			AdditionalData:  additionalData,
		},
	}
}

func testTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:               "tx-1",
		PaymentRequestID: "req-1",
		Provider:         domain.ProviderExpay,
		ExternalID:       "ext-1",
		Status:           domain.TxStatusApproved,
		Method:           "pix",
		Amount:           90,
	}
}

func TestBuildOrdersSingleService(t *testing.T) {
	orders, err := buildOrders(testRequest(`{"total_quantity":500}`), testTransaction())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.Equal(t, "ext-1", order.IdempotencyKey)
	assert.Equal(t, "svc-likes", order.ServiceID)
	assert.Equal(t, 500, order.Quantity)
	assert.Equal(t, 90.0, order.Amount)
	assert.Equal(t, "maria.insta", order.TargetUsername)
	assert.Equal(t, "pix", order.PaymentMethod)
}

func TestBuildOrdersMultiPostSplit(t *testing.T) {
	data := `{
		"total_quantity": 300,
		"posts": [
			{"id": "p1", "quantity": 120},
			{"code": "c2"},
			{}
		]
	}`
	orders, err := buildOrders(testRequest(data), testTransaction())
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, "ext-1_p1", orders[0].IdempotencyKey)
	assert.Equal(t, "ext-1_c2", orders[1].IdempotencyKey)
	assert.Equal(t, "ext-1_2", orders[2].IdempotencyKey)

	// Explicit post quantity wins, the rest split the total
	assert.Equal(t, 120, orders[0].Quantity)
	assert.Equal(t, 100, orders[1].Quantity)
	assert.Equal(t, 100, orders[2].Quantity)

	for _, order := range orders {
		assert.InDelta(t, 30.0, order.Amount, 0.001)
	}
}

func TestBuildOrdersCalculatedQuantity(t *testing.T) {
	data := `{"posts":[{"id":"p1","calculated_quantity":42},{"id":"p2","calculated_quantity":58}]}`
	orders, err := buildOrders(testRequest(data), testTransaction())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 42, orders[0].Quantity)
	assert.Equal(t, 58, orders[1].Quantity)
}

func TestBuildOrdersFallbacks(t *testing.T) {
	request := testRequest("")
	request.Service.ServiceID = ""
	request.Service.ProfileUsername = ""

	orders, err := buildOrders(request, testTransaction())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, fallbackServiceID, orders[0].ServiceID)
	assert.Equal(t, fallbackQuantity, orders[0].Quantity)
	assert.Equal(t, fallbackUsername, orders[0].TargetUsername)
}

func TestBuildOrdersServiceBlobOverridesRequest(t *testing.T) {
	orders, err := buildOrders(testRequest(`{"service":{"id":"svc-override","quantity":250}}`), testTransaction())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "svc-override", orders[0].ServiceID)
	assert.Equal(t, 250, orders[0].Quantity)
}

func TestBuildOrdersMalformedData(t *testing.T) {
	_, err := buildOrders(testRequest(`{not json`), testTransaction())
	assert.Error(t, err)
}

func TestBuildOrdersCarriesPostData(t *testing.T) {
	data := `{"posts":[{"id":"p1","url":"https://insta/p1","quantity":10},{"id":"p2","url":"https://insta/p2","quantity":20}]}`
	orders, err := buildOrders(testRequest(data), testTransaction())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "https://insta/p1", orders[0].PostData["url"])
	assert.Equal(t, "https://insta/p2", orders[1].PostData["url"])
}

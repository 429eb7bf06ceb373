package domain

import (
	"context"
	"time"
)

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(topic string, msgs ...Message) error
}

type SubscriberPort interface {
	Subscribe(topic, groupID string) (<-chan Message, error)
}

// WebhookDeduper suppresses replayed provider deliveries. Claim returns false
// when an identical delivery was already seen within the dedup window.
// Release gives the claim back when processing fails, so the provider's
// redelivery is not suppressed.
type WebhookDeduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// OrderCreation is one fulfillment order request sent downstream.
type OrderCreation struct {
	TransactionID  string
	PaymentID      string
	ServiceID      string
	ExternalID     string
	IdempotencyKey string
	Amount         float64
	Quantity       int
	TargetUsername string
	CustomerEmail  string
	CustomerName   string
	PostData       map[string]any
	PaymentMethod  string
	PaymentStatus  string
}

type OrdersPort interface {
	CreateOrder(ctx context.Context, req *OrderCreation) (orderID string, rawResponse string, err error)
	OrderStatus(ctx context.Context, externalOrderID string) (status string, err error)
}

// DispatchEnqueuer schedules the approved-payment -> fulfillment-order handoff.
type DispatchEnqueuer interface {
	Enqueue(ctx context.Context, transactionID, paymentRequestID, externalID string) (string, error)
}

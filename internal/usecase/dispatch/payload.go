package dispatch

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/viralizamos/payment-service/internal/domain"
)

// Fallbacks for checkouts created before the frontend sent complete data.
const (
	fallbackServiceID = "instagram-followers"
	fallbackQuantity  = 100
	fallbackUsername  = "unspecified_user"
)

type checkoutPost struct {
	ID                 string `json:"id"`
	Code               string `json:"code"`
	URL                string `json:"url"`
	Quantity           int    `json:"quantity"`
	CalculatedQuantity int    `json:"calculated_quantity"`
}

type checkoutData struct {
	Posts         []checkoutPost `json:"posts"`
	Quantity      int            `json:"quantity"`
	TotalQuantity int            `json:"total_quantity"`
	Service       struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"service"`
}

// buildOrders expands one approved payment into the fulfillment orders sent
// downstream. A checkout over several posts becomes one order per post, with
// the amount and quantity split between them; anything else is a single order
// for the whole payment.
func buildOrders(request *domain.PaymentRequest, tx *domain.Transaction) ([]*domain.OrderCreation, error) {
	var data checkoutData
	var rawPosts []map[string]any
	if request.Service.AdditionalData != "" {
		if err := json.Unmarshal([]byte(request.Service.AdditionalData), &data); err != nil {
			return nil, fmt.Errorf("malformed checkout data on request %s: %w", request.ID, err)
		}
		var rawData struct {
			Posts []map[string]any `json:"posts"`
		}
		_ = json.Unmarshal([]byte(request.Service.AdditionalData), &rawData)
		rawPosts = rawData.Posts
	}

	serviceID := data.Service.ID
	if serviceID == "" {
		serviceID = request.Service.ServiceID
	}
	if serviceID == "" {
		serviceID = fallbackServiceID
	}

	targetUsername := request.Service.ProfileUsername
	if targetUsername == "" {
		targetUsername = fallbackUsername
	}

	base := domain.OrderCreation{
		TransactionID:  tx.ID,
		PaymentID:      request.ID,
		ServiceID:      serviceID,
		ExternalID:     tx.ExternalID,
		TargetUsername: targetUsername,
		CustomerEmail:  request.Customer.Email,
		CustomerName:   request.Customer.Name,
		PaymentMethod:  tx.Method,
		PaymentStatus:  string(tx.Status),
	}

	if len(data.Posts) <= 1 {
		order := base
		order.IdempotencyKey = tx.ExternalID
		order.Amount = tx.Amount
		order.Quantity = totalQuantity(data)
		if len(data.Posts) == 1 {
			order.Quantity = postQuantity(data.Posts[0], data, 1)
			if len(rawPosts) == 1 {
				order.PostData = rawPosts[0]
			}
		}
		return []*domain.OrderCreation{&order}, nil
	}

	orders := make([]*domain.OrderCreation, 0, len(data.Posts))
	perPostAmount := tx.Amount / float64(len(data.Posts))
	for i, post := range data.Posts {
		order := base
		order.IdempotencyKey = fmt.Sprintf("%s_%s", tx.ExternalID, postKey(post, i))
		order.Amount = perPostAmount
		order.Quantity = postQuantity(post, data, len(data.Posts))
		if i < len(rawPosts) {
			order.PostData = rawPosts[i]
		}
		orders = append(orders, &order)
	}
	return orders, nil
}

// postKey makes per-post idempotency keys stable across retries even when the
// frontend omitted post ids.
func postKey(post checkoutPost, index int) string {
	if post.ID != "" {
		return post.ID
	}
	if post.Code != "" {
		return post.Code
	}
	return strconv.Itoa(index)
}

func postQuantity(post checkoutPost, data checkoutData, postCount int) int {
	if post.Quantity > 0 {
		return post.Quantity
	}
	if post.CalculatedQuantity > 0 {
		return post.CalculatedQuantity
	}
	if total := totalQuantity(data); total > 0 && postCount > 0 {
		return total / postCount
	}
	return fallbackQuantity
}

func totalQuantity(data checkoutData) int {
	switch {
	case data.TotalQuantity > 0:
		return data.TotalQuantity
	case data.Quantity > 0:
		return data.Quantity
	case data.Service.Quantity > 0:
		return data.Service.Quantity
	}
	return fallbackQuantity
}

package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viralizamos/payment-service/internal/delivery/http/handlers"
	"github.com/viralizamos/payment-service/internal/delivery/http/middleware"
)

// NewRouter wires the public checkout surface, the provider webhooks and the
// API-key-guarded operator endpoints.
func NewRouter(
	paymentRequestHandler *handlers.PaymentRequestHandler,
	webhookHandler *handlers.WebhookHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	apiKey string) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/payment-requests", paymentRequestHandler.Create)
		// Compatibility alias kept for older frontends
		api.POST("/payment-request", paymentRequestHandler.Create)
		api.GET("/payment-requests/:token", paymentRequestHandler.GetByToken)
		api.POST("/payments/pix", paymentRequestHandler.CreatePixCharge)

		api.POST("/webhooks/mercadopago", webhookHandler.MercadoPago)
		api.POST("/webhooks/expay", webhookHandler.Expay)
	}

	// Mercado Pago was registered with the /app prefix at some point and
	// notifications still arrive there
	router.POST("/app/webhooks/mercadopago", webhookHandler.MercadoPago)

	authorized := router.Group("/api", middleware.RequireAPIKey(apiKey))
	{
		authorized.POST("/webhooks/payment-approved", webhookHandler.PaymentApproved)
		authorized.POST("/orders/sync-status", adminHandler.SyncStatus)
		authorized.POST("/orders/check-status", adminHandler.CheckStatus)
		authorized.GET("/monitoring/queue-status", adminHandler.QueueStatus)
		authorized.POST("/monitoring/requeue", adminHandler.Requeue)
	}

	return router
}

package setup

import (
	"fmt"

	"github.com/viralizamos/payment-service/internal/config"
	"github.com/viralizamos/payment-service/internal/domain"
	"github.com/viralizamos/payment-service/internal/infrastructure/expay"
	"github.com/viralizamos/payment-service/internal/infrastructure/kafka"
	"github.com/viralizamos/payment-service/internal/infrastructure/mercadopago"
	"github.com/viralizamos/payment-service/internal/infrastructure/metrics"
	"github.com/viralizamos/payment-service/internal/infrastructure/orders"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/repository"
	"github.com/viralizamos/payment-service/internal/infrastructure/redisdedup"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config     *config.PaymentConfig
	DB         *gorm.DB
	Publisher  *kafka.DefaultKafkaPublisher
	Subscriber *kafka.DefaultKafkaSubscriber
	Dedup      *redisdedup.Store
	Metrics    *metrics.PaymentMetrics

	MercadoPago *mercadopago.Client
	Expay       *expay.Client
	Orders      *orders.Client

	Repositories *Repositories
}

type Repositories struct {
	RequestRepo         domain.PaymentRequestRepository
	TxRepo              domain.TransactionRepository
	QueueRepo           domain.QueueRepository
	CustomerRepo        domain.CustomerRepository
	WebhookLogRepo      domain.WebhookLogRepository
	NotificationLogRepo domain.NotificationLogRepository
	ProviderLogRepo     domain.ProviderResponseLogRepository
}

func InitializeDependencies() (*Dependencies, error) {
	cfg := config.MustLoad()

	db := postgres.MustInitDB(cfg)

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}

	mercadoPagoClient, err := mercadopago.NewClient(cfg.MercadoPago.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("mercado pago client: %w", err)
	}

	expayClient, err := expay.NewClient(cfg.Expay.BaseURL, cfg.Expay.MerchantKey)
	if err != nil {
		return nil, fmt.Errorf("expay client: %w", err)
	}

	repos := &Repositories{
		RequestRepo:         repository.NewDefaultPaymentRequestRepository(db),
		TxRepo:              repository.NewDefaultTransactionRepository(db),
		QueueRepo:           repository.NewDefaultQueueRepository(db),
		CustomerRepo:        repository.NewDefaultCustomerRepository(db),
		WebhookLogRepo:      repository.NewPGWebhookLogRepository(db),
		NotificationLogRepo: repository.NewPGNotificationLogRepository(db),
		ProviderLogRepo:     repository.NewPGProviderResponseLogRepository(db),
	}

	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Publisher:   kafka.NewDefaultKafkaPublisher(brokers),
		Subscriber:  kafka.NewDefaultKafkaSubscriber(brokers),
		Dedup:       redisdedup.NewStore(cfg.RedisService.Addr, cfg.RedisService.Password),
		Metrics:     metrics.NewPaymentMetrics(),
		MercadoPago: mercadoPagoClient,
		Expay:       expayClient,
		Orders: orders.NewClient(
			cfg.OrdersAPI.BaseURL,
			cfg.OrdersAPI.CreatePath,
			cfg.OrdersAPI.StatusPath,
			cfg.OrdersAPI.APIKey,
			cfg.OrdersAPI.JWTSecret,
		),
		Repositories: repos,
	}, nil
}

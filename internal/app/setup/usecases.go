package setup

import (
	"github.com/viralizamos/payment-service/internal/usecase"
	"github.com/viralizamos/payment-service/internal/usecase/dispatch"
)

type UseCases struct {
	RequestUsecase   usecase.PaymentRequestUsecase
	PaymentUsecase   usecase.PaymentUsecase
	DispatchUsecase  *dispatch.DefaultDispatchUsecase
	ReconcileUsecase usecase.ReconcileUsecase
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	repos := deps.Repositories

	dispatchUsecase := dispatch.NewDefaultDispatchUsecase(
		repos.QueueRepo,
		repos.TxRepo,
		repos.RequestRepo,
		repos.NotificationLogRepo,
		repos.ProviderLogRepo,
		deps.Orders,
		deps.Publisher,
		deps.Config.KafkaService.Topic,
		deps.Config.Dispatch.RetryDelay,
		deps.Metrics,
	)

	requestUsecase := usecase.NewDefaultPaymentRequestUsecase(
		repos.RequestRepo,
		deps.Config.Dispatch.RequestTTL,
		deps.Metrics,
	)

	paymentUsecase := usecase.NewDefaultPaymentUsecase(
		repos.RequestRepo,
		repos.TxRepo,
		repos.CustomerRepo,
		repos.WebhookLogRepo,
		repos.NotificationLogRepo,
		deps.Dedup,
		dispatchUsecase,
		deps.MercadoPago,
		deps.Expay,
		deps.Config.Expay.WebhookURL,
		deps.Metrics,
	)

	reconcileUsecase := usecase.NewDefaultReconcileUsecase(
		repos.RequestRepo,
		repos.ProviderLogRepo,
		repos.WebhookLogRepo,
		deps.Orders,
		deps.Metrics,
	)

	return &UseCases{
		RequestUsecase:   requestUsecase,
		PaymentUsecase:   paymentUsecase,
		DispatchUsecase:  dispatchUsecase,
		ReconcileUsecase: reconcileUsecase,
	}
}

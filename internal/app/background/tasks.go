package background

import (
	"context"
	"log"
	"time"

	"github.com/viralizamos/payment-service/internal/usecase"
	"github.com/viralizamos/payment-service/internal/usecase/dispatch"
)

// reconcileInterval is deliberately long: the sweep is a safety net behind
// webhooks, not a primary update path.
const reconcileInterval = 15 * time.Minute

type BackgroundTasks struct {
	RequestUsecase   usecase.PaymentRequestUsecase
	DispatchUsecase  dispatch.DispatchUsecase
	ReconcileUsecase usecase.ReconcileUsecase

	ExpiryInterval time.Duration
}

func NewBackgroundTasks(
	requestUC usecase.PaymentRequestUsecase,
	dispatchUC dispatch.DispatchUsecase,
	reconcileUC usecase.ReconcileUsecase,
	expiryInterval time.Duration) *BackgroundTasks {

	return &BackgroundTasks{
		RequestUsecase:   requestUC,
		DispatchUsecase:  dispatchUC,
		ReconcileUsecase: reconcileUC,
		ExpiryInterval:   expiryInterval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startRequestExpiry(ctx)
	go bt.startQueueDepthRefresh(ctx)
	go bt.startPeriodicReconciliation(ctx)
}

func (bt *BackgroundTasks) startRequestExpiry(ctx context.Context) {
	ticker := time.NewTicker(bt.ExpiryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := bt.RequestUsecase.ExpireOverdue(); err != nil {
				log.Printf("Request expiry sweep error: %v\n", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startQueueDepthRefresh(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := bt.DispatchUsecase.Stats(); err != nil {
				log.Printf("Queue depth refresh error: %v\n", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startPeriodicReconciliation(ctx context.Context) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := bt.ReconcileUsecase.SyncStatuses(ctx, 0, 0); err != nil {
				log.Printf("Reconciliation sweep error: %v\n", err)
			}
		}
	}
}

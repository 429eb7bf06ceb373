package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/viralizamos/payment-service/internal/app/background"
	"github.com/viralizamos/payment-service/internal/app/setup"
	httpdelivery "github.com/viralizamos/payment-service/internal/delivery/http"
	"github.com/viralizamos/payment-service/internal/delivery/http/handlers"
	"github.com/viralizamos/payment-service/internal/infrastructure/migrate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	deps, err := setup.InitializeDependencies()
	if err != nil {
		log.Fatalf("failed to initialize dependencies: %v", err)
	}
	cfg := deps.Config

	if cfg.PaymentDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(deps.DB, cfg.PaymentDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	useCases := setup.InitializeUseCases(deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event-driven dispatch plus the durable retry sweep behind it
	if err := useCases.DispatchUsecase.StartWorker(ctx, deps.Subscriber,
		cfg.KafkaService.Topic, "payment-dispatch"); err != nil {
		log.Fatalf("failed to start dispatch worker: %v", err)
	}
	useCases.DispatchUsecase.StartRetryWorker(ctx, cfg.Dispatch.RetryInterval)

	tasks := background.NewBackgroundTasks(
		useCases.RequestUsecase,
		useCases.DispatchUsecase,
		useCases.ReconcileUsecase,
		cfg.Dispatch.ExpiryInterval,
	)
	tasks.StartAll(ctx)

	router := httpdelivery.NewRouter(
		handlers.NewPaymentRequestHandler(useCases.RequestUsecase, useCases.PaymentUsecase),
		handlers.NewWebhookHandler(useCases.PaymentUsecase, deps.Repositories.TxRepo, useCases.DispatchUsecase),
		handlers.NewAdminHandler(useCases.ReconcileUsecase, useCases.DispatchUsecase),
		handlers.NewHealthHandler(deps.DB),
		cfg.OrdersAPI.APIKey,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server started on %s:%s\n", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to serve: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := deps.Publisher.Close(); err != nil {
		log.Printf("kafka publisher close error: %v", err)
	}
	if err := deps.Dedup.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}
}

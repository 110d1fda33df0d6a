package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/database"
	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/gateway"
	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/messaging"
	"github.com/cashflow/payment-reconciler/internal/config"
	"github.com/cashflow/payment-reconciler/internal/constant/model/db"
	"github.com/cashflow/payment-reconciler/internal/core/service"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	orderRepo := database.NewGormOrderRepository(dbConn.DB)
	stripeGateway := gateway.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.APIURL)

	var capturer output.PaymentCapturer
	if cfg.Shop.CaptureOnFinalize {
		capturer = stripeGateway
	}

	// The worker never builds links; the checkout redirect is unused off-request
	finalizer := service.NewPaymentFinalizer(orderRepo, capturer, logger)
	reconcileService := service.NewReconcileService(stripeGateway, finalizer, nil, logger)

	// Initialize secondary adapter: Messaging
	msgClient, err := messaging.NewRabbitMQClient(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer msgClient.Close()

	// Start consuming messages
	err = msgClient.ConsumeIntentMessages(intentHandler(reconcileService, gatewayTimeout))
	if err != nil {
		logger.Fatal("failed to start consuming messages", zap.Error(err))
	}

	logger.Info("reconciliation worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
}

package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/cashflow/payment-reconciler/internal/adapter/primary/http"
	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/cookie"
	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/database"
	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/gateway"
	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/link"
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
	if err := cfg.Cookie.Validate(); err != nil {
		logger.Fatal("invalid cookie configuration", zap.Error(err))
	}

	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	// Initialize secondary adapters (implement output ports)
	orderRepo := database.NewGormOrderRepository(dbConn.DB)
	stripeGateway := gateway.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.APIURL)
	links := link.NewShopLinkBuilder(cfg.Shop.BaseURL, cfg.Shop.OnePageCheckout)
	cookies := cookie.NewCodec(cfg.Cookie.HashKey, cfg.Cookie.BlockKey, cfg.Cookie.MaxAge, cfg.Cookie.Secure, logger)

	var capturer output.PaymentCapturer
	if cfg.Shop.CaptureOnFinalize {
		capturer = stripeGateway
	}

	// Initialize core services (implement input port)
	finalizer := service.NewPaymentFinalizer(orderRepo, capturer, logger)
	reconcileService := service.NewReconcileService(stripeGateway, finalizer, links, logger)

	renderer, err := http.NewTemplateRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Routes
	validationHandler := http.NewValidationHandler(reconcileService, cookies, links)
	e.GET("/payment/validation", validationHandler.Validate)

	if cfg.Stripe.WebhookSecret != "" {
		msgClient, err := messaging.NewRabbitMQClient(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer msgClient.Close()

		webhookHandler := http.NewWebhookHandler(msgClient, cfg.Stripe.WebhookSecret, logger)
		e.POST("/webhooks/stripe", webhookHandler.HandleEvent)
	} else {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.HTTP.Port)
	logger.Info("starting API server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

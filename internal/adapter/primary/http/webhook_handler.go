package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/cashflow/payment-reconciler/internal/port/output"
)

// CartMetadataKey is the intent metadata entry naming the cart
const CartMetadataKey = "cart_id"

const maxWebhookBody = 64 << 10

// finalizableEvents are the gateway events that may lead to an order
var finalizableEvents = map[stripe.EventType]bool{
	"payment_intent.succeeded":                 true,
	"payment_intent.amount_capturable_updated": true,
}

// WebhookHandler is a primary adapter (HTTP handler) for gateway events
type WebhookHandler struct {
	messaging output.IntentMessaging
	secret    string
	logger    *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(messaging output.IntentMessaging, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		messaging: messaging,
		secret:    secret,
		logger:    logger,
	}
}

// HandleEvent handles POST /webhooks/stripe.
// Finalizable intent events are queued for the worker; everything else is acknowledged.
func (h *WebhookHandler) HandleEvent(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.Request().Header.Get("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{
			Tolerance:                webhook.DefaultTolerance,
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		h.logger.Warn("rejected webhook", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid signature",
		})
	}

	log := h.logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	if !finalizableEvents[event.Type] {
		log.Debug("ignoring webhook event")
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Warn("webhook event without payment intent", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid event payload",
		})
	}

	cartID := pi.Metadata[CartMetadataKey]
	if pi.ID == "" || cartID == "" {
		log.Info("payment intent has no cart", zap.String("intent_id", pi.ID))
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	err = h.messaging.PublishIntentEvent(c.Request().Context(), output.IntentEvent{
		CartID:          cartID,
		PaymentIntentID: pi.ID,
		EventType:       string(event.Type),
	})
	if err != nil {
		log.Error("failed to enqueue intent", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to enqueue event",
		})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

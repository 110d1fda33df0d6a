package output

import (
	"context"
)

// IntentEvent asks the worker to reconcile a payment intent for a cart
type IntentEvent struct {
	CartID          string
	PaymentIntentID string
	EventType       string
}

// IntentMessaging is an output port (secondary port) for gateway event messaging
// Secondary adapters (RabbitMQ implementations) will implement this
type IntentMessaging interface {
	// PublishIntentEvent enqueues an intent for reconciliation
	PublishIntentEvent(ctx context.Context, event IntentEvent) error
	// Close closes the messaging connection
	Close() error
}

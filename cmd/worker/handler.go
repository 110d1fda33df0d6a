package main

import (
	"context"
	"time"

	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/messaging"
	"github.com/cashflow/payment-reconciler/internal/port/input"
)

// gatewayTimeout bounds the gateway calls of one message
const gatewayTimeout = 30 * time.Second

// intentHandler reconciles one queued intent. The returned error keeps the
// finalize or gateway cause so the consumer can decide between ack and requeue.
func intentHandler(svc input.ReconcileService, timeout time.Duration) func(messaging.IntentMessage) error {
	return func(msg messaging.IntentMessage) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_, err := svc.ReconcileIntent(ctx, msg.CartID, msg.PaymentIntentID)
		return err
	}
}

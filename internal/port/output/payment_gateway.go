package output

import (
	"context"

	"github.com/cashflow/payment-reconciler/internal/core"
)

// PaymentGateway is an output port (secondary port) for the hosted payment gateway.
// Failures are *core.GatewayError of kind ErrGatewayUnavailable or ErrGatewayRejected.
type PaymentGateway interface {
	// ResolveSession returns the payment intent id behind a checkout session.
	// An empty id means the session has no intent yet.
	ResolveSession(ctx context.Context, sessionID string) (string, error)

	// FetchIntent retrieves the authoritative payment intent
	FetchIntent(ctx context.Context, intentID string) (*core.PaymentIntent, error)
}

// PaymentCapturer captures an authorized intent
type PaymentCapturer interface {
	CaptureIntent(ctx context.Context, intentID string) (*core.PaymentIntent, error)
}

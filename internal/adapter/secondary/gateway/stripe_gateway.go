package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

// StripeGateway is a secondary adapter that implements the PaymentGateway output port
type StripeGateway struct {
	client *client.API
}

var (
	_ output.PaymentGateway  = (*StripeGateway)(nil)
	_ output.PaymentCapturer = (*StripeGateway)(nil)
)

// NewStripeGateway creates a gateway client with the secret key.
// apiURL overrides the Stripe API endpoint when non-empty.
func NewStripeGateway(apiKey, apiURL string) *StripeGateway {
	var backends *stripe.Backends
	if apiURL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL:               stripe.String(apiURL),
				MaxNetworkRetries: stripe.Int64(0),
			}),
			Connect: stripe.GetBackend(stripe.ConnectBackend),
			Uploads: stripe.GetBackend(stripe.UploadsBackend),
		}
	}

	sc := &client.API{}
	sc.Init(apiKey, backends)
	return &StripeGateway{client: sc}
}

// ResolveSession returns the payment intent id of a checkout session
func (g *StripeGateway) ResolveSession(ctx context.Context, sessionID string) (string, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return "", mapStripeError("checkout_sessions.get", err)
	}
	// Sessions create their intent lazily
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return "", nil
	}
	return session.PaymentIntent.ID, nil
}

// FetchIntent retrieves a payment intent by id
func (g *StripeGateway) FetchIntent(ctx context.Context, intentID string) (*core.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, mapStripeError("payment_intents.get", err)
	}
	return toCoreIntent(pi), nil
}

// CaptureIntent captures the full authorized amount of a payment intent
func (g *StripeGateway) CaptureIntent(ctx context.Context, intentID string) (*core.PaymentIntent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.Capture(intentID, params)
	if err != nil {
		return nil, mapStripeError("payment_intents.capture", err)
	}
	return toCoreIntent(pi), nil
}

func toCoreIntent(pi *stripe.PaymentIntent) *core.PaymentIntent {
	intent := &core.PaymentIntent{
		ID:          pi.ID,
		Status:      core.IntentStatus(pi.Status),
		AmountCents: pi.Amount,
		Currency:    string(pi.Currency),
		Metadata:    pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		intent.LastPaymentError = &core.PaymentError{Message: pi.LastPaymentError.Msg}
	}
	return intent
}

// mapStripeError converts stripe-go errors into gateway error kinds.
// Rate limiting and server errors are unavailability; other API errors are rejections.
func mapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return core.NewGatewayError(op, core.ErrGatewayUnavailable, err)
	}

	switch {
	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests,
		stripeErr.HTTPStatusCode >= http.StatusInternalServerError,
		stripeErr.HTTPStatusCode == 0:
		return core.NewGatewayError(op, core.ErrGatewayUnavailable, err)
	default:
		return core.NewGatewayError(op, core.ErrGatewayRejected, err)
	}
}

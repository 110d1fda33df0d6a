package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/cashflow/payment-reconciler/internal/core"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripeGateway("sk_test_123", srv.URL)
}

func TestFetchIntent(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "pi_1",
			"object": "payment_intent",
			"status": "requires_payment_method",
			"amount": 4999,
			"currency": "eur",
			"metadata": {"cart_id": "cart_7"},
			"last_payment_error": {"type": "card_error", "message": "Your card was declined."}
		}`))
	})

	intent, err := gw.FetchIntent(context.Background(), "pi_1")

	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, core.IntentRequiresPaymentMethod, intent.Status)
	assert.Equal(t, int64(4999), intent.AmountCents)
	assert.Equal(t, "eur", intent.Currency)
	assert.Equal(t, "cart_7", intent.Metadata["cart_id"])
	require.NotNil(t, intent.LastPaymentError)
	assert.Equal(t, "Your card was declined.", intent.LastPaymentError.Message)
}

func TestResolveSession(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "cs_1", "object": "checkout.session", "payment_intent": "pi_1"}`))
	})

	intentID, err := gw.ResolveSession(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, "pi_1", intentID)
}

func TestResolveSessionWithoutIntent(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "cs_1", "object": "checkout.session", "payment_intent": null}`))
	})

	intentID, err := gw.ResolveSession(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Empty(t, intentID)
}

func TestGatewayErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error": {"type": "invalid_request_error", "message": "Too many requests"}}`, core.ErrGatewayUnavailable},
		{"permission", http.StatusForbidden, `{"error": {"type": "invalid_request_error", "message": "forbidden"}}`, core.ErrGatewayRejected},
		{"authentication", http.StatusUnauthorized, `{"error": {"type": "invalid_request_error", "message": "Invalid API Key"}}`, core.ErrGatewayRejected},
		{"not found", http.StatusNotFound, `{"error": {"type": "invalid_request_error", "message": "No such payment_intent"}}`, core.ErrGatewayRejected},
		{"server error", http.StatusInternalServerError, `{"error": {"type": "api_error", "message": "oops"}}`, core.ErrGatewayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := gw.FetchIntent(context.Background(), "pi_1")

			assert.ErrorIs(t, err, tt.want)
			assert.True(t, core.IsGatewayError(err))
		})
	}
}

func TestGatewayConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	gw := NewStripeGateway("sk_test_123", url)

	_, err := gw.FetchIntent(context.Background(), "pi_1")

	assert.ErrorIs(t, err, core.ErrGatewayUnavailable)
}

func TestMapStripeError(t *testing.T) {
	assert.ErrorIs(t, mapStripeError("op", &stripe.Error{HTTPStatusCode: 429}), core.ErrGatewayUnavailable)
	assert.ErrorIs(t, mapStripeError("op", &stripe.Error{HTTPStatusCode: 503}), core.ErrGatewayUnavailable)
	assert.ErrorIs(t, mapStripeError("op", &stripe.Error{HTTPStatusCode: 403}), core.ErrGatewayRejected)
	assert.ErrorIs(t, mapStripeError("op", &stripe.Error{HTTPStatusCode: 400}), core.ErrGatewayRejected)
	assert.ErrorIs(t, mapStripeError("op", errors.New("dial tcp: i/o timeout")), core.ErrGatewayUnavailable)
}

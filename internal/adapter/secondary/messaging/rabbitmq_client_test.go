package messaging

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

func TestIntentMessageEncoding(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	body, err := encodeIntentEvent(output.IntentEvent{
		CartID:          "cart_7",
		PaymentIntentID: "pi_1",
		EventType:       "payment_intent.succeeded",
	}, now)
	require.NoError(t, err)

	msg, err := decodeIntentMessage(body)
	require.NoError(t, err)
	assert.Equal(t, "cart_7", msg.CartID)
	assert.Equal(t, "pi_1", msg.PaymentIntentID)
	assert.Equal(t, "payment_intent.succeeded", msg.EventType)
	assert.True(t, now.Equal(msg.Timestamp))
}

func TestDecodeRejectsIncompleteMessage(t *testing.T) {
	_, err := decodeIntentMessage([]byte(`{"cart_id": "cart_7"}`))
	assert.Error(t, err)

	_, err = decodeIntentMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestIsRetryable(t *testing.T) {
	unavailable := fmt.Errorf("fetch: %w",
		core.NewGatewayError("payment_intents.get", core.ErrGatewayUnavailable, errors.New("timeout")))
	rejected := core.NewGatewayError("payment_intents.get", core.ErrGatewayRejected, nil)

	assert.True(t, IsRetryable(unavailable))
	assert.False(t, IsRetryable(rejected))
	assert.False(t, IsRetryable(errors.New("order commit failed")))
	assert.True(t, IsRetryable(core.FinalizationFailedWith(errors.New("connection reset"), true, "order failed").Err()))
	assert.False(t, IsRetryable(core.FinalizationFailed("This cart has already been ordered.").Err()))
	assert.False(t, IsRetryable(nil))
}

package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayErrorKinds(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("fetch intent: %w", NewGatewayError("payment_intents.get", ErrGatewayUnavailable, cause))

	assert.True(t, errors.Is(err, ErrGatewayUnavailable))
	assert.False(t, errors.Is(err, ErrGatewayRejected))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsGatewayError(err))
	assert.Contains(t, err.Error(), "connection refused")

	assert.False(t, IsGatewayError(errors.New("other")))
}

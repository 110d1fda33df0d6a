package core

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable marks transport, connectivity and rate-limit failures
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected marks authentication and validation failures reported by the gateway
	ErrGatewayRejected = errors.New("payment gateway rejected request")
)

// GatewayError wraps a gateway failure with the operation that produced it.
// Kind is one of ErrGatewayUnavailable or ErrGatewayRejected.
type GatewayError struct {
	Op   string
	Kind error
	Err  error
}

// NewGatewayError creates a gateway error of the given kind
func NewGatewayError(op string, kind error, err error) *GatewayError {
	return &GatewayError{Op: op, Kind: kind, Err: err}
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is matches the error kind so callers can use errors.Is with the sentinels
func (e *GatewayError) Is(target error) bool {
	return target == e.Kind
}

// IsGatewayError reports whether err came from the payment gateway
func IsGatewayError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}

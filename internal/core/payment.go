package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FlowType identifies which payment flow created a payment reference
type FlowType string

const (
	FlowCheckout   FlowType = "checkout"
	FlowCreditCard FlowType = "cc"
	FlowUnknown    FlowType = ""
)

// ParseFlowType resolves the request discriminator into a closed flow type.
// Anything that is not a known flow maps to FlowUnknown.
func ParseFlowType(raw string) FlowType {
	switch FlowType(strings.TrimSpace(raw)) {
	case FlowCheckout:
		return FlowCheckout
	case FlowCreditCard:
		return FlowCreditCard
	default:
		return FlowUnknown
	}
}

// IsKnown reports whether the flow has a reconciliation path
func (f FlowType) IsKnown() bool {
	return f == FlowCheckout || f == FlowCreditCard
}

// Cart is the host-owned shopping session the core reconciles against
type Cart struct {
	ID         string
	TotalCents int64
	Currency   string
}

// PaymentReference is the in-flight gateway id bound to a cart.
// Value is a checkout session id for FlowCheckout and a payment intent id for FlowCreditCard.
type PaymentReference struct {
	CartID string
	Flow   FlowType
	Value  string
}

// IntentStatus is the gateway-reported payment intent status
type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentProcessing            IntentStatus = "processing"
	IntentRequiresCapture       IntentStatus = "requires_capture"
	IntentSucceeded             IntentStatus = "succeeded"
	IntentCanceled              IntentStatus = "canceled"
)

// IntentStatuses lists every status the gateway can report
var IntentStatuses = []IntentStatus{
	IntentRequiresPaymentMethod,
	IntentRequiresConfirmation,
	IntentRequiresAction,
	IntentProcessing,
	IntentRequiresCapture,
	IntentSucceeded,
	IntentCanceled,
}

// PaymentError is the last error the gateway attached to an intent
type PaymentError struct {
	Message string
}

// PaymentIntent is a read-only snapshot of the gateway record
type PaymentIntent struct {
	ID               string
	Status           IntentStatus
	AmountCents      int64
	Currency         string
	Metadata         map[string]string
	LastPaymentError *PaymentError
}

// OrderStatus represents the status of a finalized order
type OrderStatus string

const (
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusAuthorized OrderStatus = "authorized"
)

// Order is the local order created for a reconciled payment
type Order struct {
	ID              uuid.UUID
	CartID          string
	PaymentIntentID string
	SecureKey       string
	AmountCents     int64
	Currency        string
	Status          OrderStatus
	CreatedAt       time.Time
}

// ErrFinalizeRetryable marks a finalize failure that may succeed on a later attempt
var ErrFinalizeRetryable = errors.New("order finalization can be retried")

// FinalizationResult is the outcome of a finalize attempt.
// A nil Errors slice with a non-nil Order means the order is committed.
// Cause keeps the underlying failure; Retryable is set for infrastructure
// failures, never for business rejections.
type FinalizationResult struct {
	Order     *Order
	Errors    []string
	Cause     error
	Retryable bool
}

// Ok reports whether the order was committed
func (r FinalizationResult) Ok() bool {
	return r.Order != nil && len(r.Errors) == 0
}

// FinalizationOk builds a successful result
func FinalizationOk(order *Order) FinalizationResult {
	return FinalizationResult{Order: order}
}

// FinalizationFailed builds a failed result; it always carries at least one message
func FinalizationFailed(errs ...string) FinalizationResult {
	if len(errs) == 0 {
		errs = []string{UnknownErrorMessage}
	}
	return FinalizationResult{Errors: errs}
}

// FinalizationFailedWith builds a failed result that keeps its cause
func FinalizationFailedWith(cause error, retryable bool, errs ...string) FinalizationResult {
	res := FinalizationFailed(errs...)
	res.Cause = cause
	res.Retryable = retryable
	return res
}

// Err returns nil for a committed order. Otherwise the error wraps Cause and,
// for retryable failures, ErrFinalizeRetryable.
func (r FinalizationResult) Err() error {
	if r.Ok() {
		return nil
	}
	msg := strings.Join(r.Errors, "; ")
	switch {
	case r.Retryable && r.Cause != nil:
		return fmt.Errorf("%w: %s: %w", ErrFinalizeRetryable, msg, r.Cause)
	case r.Retryable:
		return fmt.Errorf("%w: %s", ErrFinalizeRetryable, msg)
	case r.Cause != nil:
		return fmt.Errorf("finalize failed: %s: %w", msg, r.Cause)
	default:
		return fmt.Errorf("finalize failed: %s", msg)
	}
}

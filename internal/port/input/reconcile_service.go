package input

import (
	"context"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

// ReconcileService is an input port (primary port) for payment reconciliation
// Primary adapters (HTTP handlers, queue consumers) will use this
type ReconcileService interface {
	// Reconcile runs the validation flow for a customer returning from the gateway
	Reconcile(ctx context.Context, req ReconcileRequest) Outcome

	// ReconcileIntent finalizes an intent reported out of band (gateway webhook).
	// It returns a gateway error when the intent could not be fetched and the
	// finalization error when the order could not be committed; the latter wraps
	// core.ErrFinalizeRetryable when a redelivery may succeed.
	ReconcileIntent(ctx context.Context, cartID, intentID string) (IntentResult, error)
}

// ReconcileRequest carries everything a validation request needs; nothing is ambient
type ReconcileRequest struct {
	Flow       core.FlowType
	CartID     string
	References output.ReferenceStore
}

// Action is the single outward action of a reconciliation
type Action int

const (
	ActionRedirectCheckout Action = iota
	ActionRedirectOrderConfirmation
	ActionDisplayErrors
)

func (a Action) String() string {
	switch a {
	case ActionRedirectOrderConfirmation:
		return "redirect_order_confirmation"
	case ActionDisplayErrors:
		return "display_errors"
	default:
		return "redirect_checkout"
	}
}

// Outcome is the terminal output of the flow controller.
// Errors is non-empty only for ActionDisplayErrors. Cause is set when a gateway
// failure produced the error display.
type Outcome struct {
	Action      Action
	RedirectURL string
	CheckoutURL string
	Order       *core.Order
	Errors      []string
	Cause       error
}

// IntentResult reports what out-of-band reconciliation did
type IntentResult struct {
	Decision core.Decision
	Order    *core.Order
	Errors   []string
}

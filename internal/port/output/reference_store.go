package output

import (
	"github.com/cashflow/payment-reconciler/internal/core"
)

// ReferenceStore is an output port for the client-held payment reference.
// Implementations are request scoped.
type ReferenceStore interface {
	// Get returns the reference bound to the cart; ok is false when none exists
	Get(cartID string) (ref core.PaymentReference, ok bool)

	// Clear removes the reference bound to the cart; it is a no-op when absent
	Clear(cartID string)
}

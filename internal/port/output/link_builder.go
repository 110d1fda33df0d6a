package output

import (
	"github.com/cashflow/payment-reconciler/internal/core"
)

// LinkBuilder builds the shop URLs the reconciliation redirects to
type LinkBuilder interface {
	CheckoutPageURL() string
	OrderConfirmationURL(order *core.Order) string
}

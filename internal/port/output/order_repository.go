package output

import (
	"context"
	"errors"

	"github.com/cashflow/payment-reconciler/internal/core"
)

// ErrCartNotFound is returned by Transact when the cart row does not exist
var ErrCartNotFound = errors.New("cart not found")

// OrderRepository is an output port (secondary port) for order persistence
type OrderRepository interface {
	// FindByIntent returns the order created for (cart, intent), or nil when none exists
	FindByIntent(ctx context.Context, cartID, intentID string) (*core.Order, error)

	// Transact runs fn while holding an exclusive lock on the cart.
	// The order writes made through tx commit only if fn returns nil.
	Transact(ctx context.Context, cartID string, fn func(tx OrderTx) error) error
}

// OrderTx is the view of the order store inside a cart-locked transaction
type OrderTx interface {
	// Cart returns the locked cart
	Cart() core.Cart

	// FindByIntent returns the order for the locked cart and intent, or nil
	FindByIntent(intentID string) (*core.Order, error)

	// FindByCart returns any order already created for the locked cart, or nil
	FindByCart() (*core.Order, error)

	// Create inserts the order
	Create(order *core.Order) error
}

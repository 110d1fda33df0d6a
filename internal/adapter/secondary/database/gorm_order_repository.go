package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/cashflow/payment-reconciler/internal/constant/model/db"
	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository is a secondary adapter that implements OrderRepository output port
type GormOrderRepository struct {
	gormDB *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository
func NewGormOrderRepository(gormDB *gorm.DB) output.OrderRepository {
	return &GormOrderRepository{gormDB: gormDB}
}

// toCore converts db.Order to core.Order
func toCore(o *db.Order) *core.Order {
	return &core.Order{
		ID:              o.ID,
		CartID:          o.CartID,
		PaymentIntentID: o.PaymentIntentID,
		SecureKey:       o.SecureKey,
		AmountCents:     o.AmountCents,
		Currency:        o.Currency,
		Status:          core.OrderStatus(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}

// fromCore converts core.Order to db.Order
func fromCore(o *core.Order) *db.Order {
	return &db.Order{
		ID:              o.ID,
		CartID:          o.CartID,
		PaymentIntentID: o.PaymentIntentID,
		SecureKey:       o.SecureKey,
		AmountCents:     o.AmountCents,
		Currency:        o.Currency,
		Status:          db.OrderStatus(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}

// findOrder returns nil when no row matches
func findOrder(q *gorm.DB) (*core.Order, error) {
	var dbOrder db.Order
	if err := q.First(&dbOrder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toCore(&dbOrder), nil
}

// FindByIntent retrieves the order created for a cart and payment intent
func (r *GormOrderRepository) FindByIntent(ctx context.Context, cartID, intentID string) (*core.Order, error) {
	return findOrder(r.gormDB.WithContext(ctx).
		Where("cart_id = ? AND payment_intent_id = ?", cartID, intentID))
}

// Transact locks the cart row with SELECT FOR UPDATE and runs fn in the same transaction.
// Concurrent finalizers for the cart wait on the lock and then see the committed order.
func (r *GormOrderRepository) Transact(ctx context.Context, cartID string, fn func(tx output.OrderTx) error) error {
	return r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbCart db.Cart

		// Lock the cart row for the rest of the transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", cartID).
			First(&dbCart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", output.ErrCartNotFound, cartID)
			}
			return fmt.Errorf("failed to lock cart: %w", err)
		}

		return fn(&gormOrderTx{
			tx: tx,
			cart: core.Cart{
				ID:         dbCart.ID,
				TotalCents: dbCart.TotalCents,
				Currency:   dbCart.Currency,
			},
		})
	})
}

// gormOrderTx implements OrderTx over an open transaction
type gormOrderTx struct {
	tx   *gorm.DB
	cart core.Cart
}

func (t *gormOrderTx) Cart() core.Cart {
	return t.cart
}

func (t *gormOrderTx) FindByIntent(intentID string) (*core.Order, error) {
	return findOrder(t.tx.Where("cart_id = ? AND payment_intent_id = ?", t.cart.ID, intentID))
}

func (t *gormOrderTx) FindByCart() (*core.Order, error) {
	return findOrder(t.tx.Where("cart_id = ?", t.cart.ID))
}

// Create inserts the order; the unique indexes reject a second order for the cart or intent
func (t *gormOrderTx) Create(order *core.Order) error {
	dbOrder := fromCore(order)
	if err := t.tx.Create(dbOrder).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	// Update core entity with fields set by GORM hooks
	order.ID = dbOrder.ID
	order.CreatedAt = dbOrder.CreatedAt
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

// Messages shown to the customer when an order cannot be committed
const (
	MsgAmountMismatch = "The paid amount does not match your cart total. Please contact us."
	MsgCartOrdered    = "This cart has already been ordered."
	MsgCartNotFound   = "Your cart could not be found. Please contact us."
	MsgCaptureFailed  = "Your payment could not be captured. Please try again or contact us."
	MsgOrderFailed    = "Your payment was received but we could not create your order. Please contact us."
)

// finalizeError carries a customer-facing message out of the transaction
type finalizeError struct {
	msg       string
	err       error
	retryable bool
}

func (e *finalizeError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *finalizeError) Unwrap() error {
	return e.err
}

// PaymentFinalizer commits the local order for a successful payment intent
type PaymentFinalizer struct {
	orderRepo output.OrderRepository
	capturer  output.PaymentCapturer
	logger    *zap.Logger
}

// NewPaymentFinalizer creates a new payment finalizer.
// A nil capturer leaves requires_capture intents authorized.
func NewPaymentFinalizer(
	orderRepo output.OrderRepository,
	capturer output.PaymentCapturer,
	logger *zap.Logger,
) *PaymentFinalizer {
	return &PaymentFinalizer{
		orderRepo: orderRepo,
		capturer:  capturer,
		logger:    logger,
	}
}

// Finalize creates the order for (cart, intent) at most once.
// The cart row stays locked from the existence check through commit, so a
// concurrent call for the same cart observes the committed order and returns it.
func (f *PaymentFinalizer) Finalize(ctx context.Context, cartID string, intent *core.PaymentIntent) core.FinalizationResult {
	log := f.logger.With(zap.String("cart_id", cartID), zap.String("intent_id", intent.ID))

	existing, err := f.orderRepo.FindByIntent(ctx, cartID, intent.ID)
	if err != nil {
		log.Error("order lookup failed", zap.Error(err))
		return core.FinalizationFailedWith(err, true, MsgOrderFailed)
	}
	if existing != nil {
		log.Info("order already finalized", zap.String("order_id", existing.ID.String()))
		return core.FinalizationOk(existing)
	}

	var order *core.Order
	err = f.orderRepo.Transact(ctx, cartID, func(tx output.OrderTx) error {
		found, err := tx.FindByIntent(intent.ID)
		if err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if found != nil {
			order = found
			return nil
		}

		other, err := tx.FindByCart()
		if err != nil {
			return fmt.Errorf("failed to check cart order: %w", err)
		}
		if other != nil {
			return &finalizeError{msg: MsgCartOrdered}
		}

		cart := tx.Cart()
		if cart.TotalCents != intent.AmountCents || !strings.EqualFold(cart.Currency, intent.Currency) {
			return &finalizeError{msg: MsgAmountMismatch}
		}

		status := orderStatusFor(intent.Status)
		// A captured intent whose insert then fails reconciles as succeeded on retry
		if intent.Status == core.IntentRequiresCapture && f.capturer != nil {
			if _, err := f.capturer.CaptureIntent(ctx, intent.ID); err != nil {
				return &finalizeError{
					msg:       MsgCaptureFailed,
					err:       err,
					retryable: errors.Is(err, core.ErrGatewayUnavailable),
				}
			}
			status = core.OrderStatusPaid
		}

		created := &core.Order{
			ID:              uuid.New(),
			CartID:          cart.ID,
			PaymentIntentID: intent.ID,
			SecureKey:       strings.ReplaceAll(uuid.NewString(), "-", ""),
			AmountCents:     intent.AmountCents,
			Currency:        strings.ToLower(intent.Currency),
			Status:          status,
		}
		if err := tx.Create(created); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		order = created
		return nil
	})

	if err != nil {
		var fe *finalizeError
		if errors.As(err, &fe) {
			log.Warn("order not finalized",
				zap.String("reason", fe.msg),
				zap.Bool("retryable", fe.retryable),
				zap.Error(fe.err),
			)
			return core.FinalizationFailedWith(fe.err, fe.retryable, fe.msg)
		}
		if errors.Is(err, output.ErrCartNotFound) {
			log.Error("cart missing at finalize", zap.Error(err))
			return core.FinalizationFailedWith(err, false, MsgCartNotFound)
		}
		// Lock, lookup and insert failures are infrastructure; the payment still stands
		log.Error("order commit failed", zap.Error(err))
		return core.FinalizationFailedWith(err, true, MsgOrderFailed)
	}

	log.Info("order finalized",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	return core.FinalizationOk(order)
}

func orderStatusFor(status core.IntentStatus) core.OrderStatus {
	if status == core.IntentSucceeded {
		return core.OrderStatusPaid
	}
	return core.OrderStatusAuthorized
}

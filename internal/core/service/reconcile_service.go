package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/input"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

// MsgGatewayFailure replaces gateway error text on the customer-facing error page
const MsgGatewayFailure = "We could not confirm your payment with the payment provider. Please try again in a few minutes."

// Finalizer commits the local order for a payment intent
type Finalizer interface {
	Finalize(ctx context.Context, cartID string, intent *core.PaymentIntent) core.FinalizationResult
}

// ReconcileServiceImpl implements the ReconcileService input port
type ReconcileServiceImpl struct {
	gateway   output.PaymentGateway
	finalizer Finalizer
	links     output.LinkBuilder
	logger    *zap.Logger
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(
	gateway output.PaymentGateway,
	finalizer Finalizer,
	links output.LinkBuilder,
	logger *zap.Logger,
) input.ReconcileService {
	return &ReconcileServiceImpl{
		gateway:   gateway,
		finalizer: finalizer,
		links:     links,
		logger:    logger,
	}
}

// Reconcile turns the pending payment reference of a cart into exactly one outward action
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, req input.ReconcileRequest) input.Outcome {
	log := s.logger.With(zap.String("cart_id", req.CartID), zap.String("flow", string(req.Flow)))

	if !req.Flow.IsKnown() || req.CartID == "" {
		return s.redirectCheckout()
	}

	ref, ok := req.References.Get(req.CartID)
	if !ok || ref.Flow != req.Flow || ref.Value == "" {
		log.Debug("no payment reference")
		return s.redirectCheckout()
	}

	intentID := ref.Value
	if req.Flow == core.FlowCheckout {
		resolved, err := s.gateway.ResolveSession(ctx, ref.Value)
		if err != nil {
			return s.gatewayFailure(log, fmt.Errorf("failed to resolve checkout session: %w", err))
		}
		if resolved == "" {
			// The session has not created its intent yet
			log.Debug("checkout session pending")
			return s.redirectCheckout()
		}
		intentID = resolved
	}

	return s.reconcileIntent(ctx, log, req, intentID)
}

func (s *ReconcileServiceImpl) reconcileIntent(
	ctx context.Context,
	log *zap.Logger,
	req input.ReconcileRequest,
	intentID string,
) input.Outcome {
	intent, err := s.gateway.FetchIntent(ctx, intentID)
	if err != nil {
		return s.gatewayFailure(log, fmt.Errorf("failed to fetch payment intent: %w", err))
	}

	decision := core.Classify(*intent)
	log = log.With(zap.String("intent_id", intent.ID), zap.Stringer("decision", decision.Kind))

	switch decision.Kind {
	case core.DecisionFinalize:
		result := s.finalizer.Finalize(ctx, req.CartID, intent)
		if !result.Ok() {
			// Reference kept: the payment went through, a retry must not re-prompt it
			log.Error("finalization failed", zap.Strings("errors", result.Errors))
			return s.displayErrors(result.Errors, nil)
		}
		req.References.Clear(req.CartID)
		log.Info("payment reconciled", zap.String("order_id", result.Order.ID.String()))
		return input.Outcome{
			Action:      input.ActionRedirectOrderConfirmation,
			RedirectURL: s.links.OrderConfirmationURL(result.Order),
			CheckoutURL: s.links.CheckoutPageURL(),
			Order:       result.Order,
		}

	case core.DecisionCancelled:
		req.References.Clear(req.CartID)
		log.Info("payment cancelled")
		return s.redirectCheckout()

	case core.DecisionFailed:
		req.References.Clear(req.CartID)
		log.Info("payment failed", zap.String("message", decision.Message))
		return s.displayErrors([]string{decision.Message}, nil)

	default:
		log.Debug("payment pending")
		return s.redirectCheckout()
	}
}

// ReconcileIntent finalizes an intent reported by a gateway event.
// Only a Finalize decision has an effect; there is no client state to clear.
// A failed finalize is returned as an error wrapping its cause.
func (s *ReconcileServiceImpl) ReconcileIntent(ctx context.Context, cartID, intentID string) (input.IntentResult, error) {
	log := s.logger.With(zap.String("cart_id", cartID), zap.String("intent_id", intentID))

	intent, err := s.gateway.FetchIntent(ctx, intentID)
	if err != nil {
		return input.IntentResult{}, fmt.Errorf("failed to fetch payment intent: %w", err)
	}

	decision := core.Classify(*intent)
	result := input.IntentResult{Decision: decision}
	if decision.Kind != core.DecisionFinalize {
		log.Info("intent not finalizable", zap.Stringer("decision", decision.Kind))
		return result, nil
	}

	fin := s.finalizer.Finalize(ctx, cartID, intent)
	result.Order = fin.Order
	result.Errors = fin.Errors
	return result, fin.Err()
}

func (s *ReconcileServiceImpl) redirectCheckout() input.Outcome {
	url := s.links.CheckoutPageURL()
	return input.Outcome{
		Action:      input.ActionRedirectCheckout,
		RedirectURL: url,
		CheckoutURL: url,
	}
}

func (s *ReconcileServiceImpl) displayErrors(errs []string, cause error) input.Outcome {
	return input.Outcome{
		Action:      input.ActionDisplayErrors,
		CheckoutURL: s.links.CheckoutPageURL(),
		Errors:      errs,
		Cause:       cause,
	}
}

// gatewayFailure leaves the reference intact so the customer can retry
func (s *ReconcileServiceImpl) gatewayFailure(log *zap.Logger, err error) input.Outcome {
	if errors.Is(err, core.ErrGatewayRejected) {
		log.Error("gateway rejected request", zap.Error(err))
	} else {
		log.Error("gateway unavailable", zap.Error(err))
	}
	return s.displayErrors([]string{MsgGatewayFailure}, err)
}

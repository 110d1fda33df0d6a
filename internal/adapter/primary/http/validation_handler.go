package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cashflow/payment-reconciler/internal/adapter/secondary/cookie"
	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/input"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

// ValidationHandler is a primary adapter (HTTP handler) for customers returning from the gateway
type ValidationHandler struct {
	reconcileService input.ReconcileService
	cookies          *cookie.Codec
	links            output.LinkBuilder
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(
	reconcileService input.ReconcileService,
	cookies *cookie.Codec,
	links output.LinkBuilder,
) *ValidationHandler {
	return &ValidationHandler{
		reconcileService: reconcileService,
		cookies:          cookies,
		links:            links,
	}
}

// Validate handles GET /payment/validation?type={checkout|cc}
func (h *ValidationHandler) Validate(c echo.Context) error {
	flow := core.ParseFlowType(c.QueryParam("type"))

	cartID, ok := h.cookies.CartID(c)
	if !ok {
		return c.Redirect(http.StatusFound, h.links.CheckoutPageURL())
	}

	// Call service (input port)
	outcome := h.reconcileService.Reconcile(c.Request().Context(), input.ReconcileRequest{
		Flow:       flow,
		CartID:     cartID,
		References: h.cookies.References(c),
	})

	switch outcome.Action {
	case input.ActionRedirectOrderConfirmation, input.ActionRedirectCheckout:
		return c.Redirect(http.StatusFound, outcome.RedirectURL)
	default:
		return c.Render(errorStatus(outcome.Cause), "error.html", ErrorPage{
			Errors:    outcome.Errors,
			OrderLink: outcome.CheckoutURL,
		})
	}
}

// errorStatus maps gateway failures to gateway status codes
func errorStatus(cause error) int {
	switch {
	case cause == nil:
		return http.StatusOK
	case errors.Is(cause, core.ErrGatewayRejected):
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}

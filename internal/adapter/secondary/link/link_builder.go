package link

import (
	"net/url"
	"strings"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

// Checkout page names of the shop
const (
	PageOrder        = "order"
	PageOrderOnePage = "order-opc"
	PageConfirmation = "order-confirmation"
)

// ShopLinkBuilder is a secondary adapter that implements LinkBuilder output port
type ShopLinkBuilder struct {
	baseURL      string
	checkoutPage string
}

var _ output.LinkBuilder = (*ShopLinkBuilder)(nil)

// NewShopLinkBuilder creates a link builder rooted at the shop base URL
func NewShopLinkBuilder(baseURL string, onePageCheckout bool) *ShopLinkBuilder {
	page := PageOrder
	if onePageCheckout {
		page = PageOrderOnePage
	}
	return &ShopLinkBuilder{
		baseURL:      strings.TrimRight(baseURL, "/"),
		checkoutPage: page,
	}
}

// CheckoutPageURL returns the checkout page the customer goes back to
func (b *ShopLinkBuilder) CheckoutPageURL() string {
	return b.baseURL + "/" + b.checkoutPage
}

// OrderConfirmationURL returns the confirmation page of a finalized order
func (b *ShopLinkBuilder) OrderConfirmationURL(order *core.Order) string {
	q := url.Values{}
	q.Set("id_cart", order.CartID)
	q.Set("id_order", order.ID.String())
	q.Set("key", order.SecureKey)
	return b.baseURL + "/" + PageConfirmation + "?" + q.Encode()
}

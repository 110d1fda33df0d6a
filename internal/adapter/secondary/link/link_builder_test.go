package link

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/cashflow/payment-reconciler/internal/core"
)

func TestCheckoutPageURL(t *testing.T) {
	assert.Equal(t, "https://shop.test/order", NewShopLinkBuilder("https://shop.test/", false).CheckoutPageURL())
	assert.Equal(t, "https://shop.test/order-opc", NewShopLinkBuilder("https://shop.test", true).CheckoutPageURL())
}

func TestOrderConfirmationURL(t *testing.T) {
	id := uuid.MustParse("6f1c3a2e-8d4b-4c41-9f0e-2b7a5d9c1e34")
	order := &core.Order{ID: id, CartID: "cart_7", SecureKey: "abc"}

	got := NewShopLinkBuilder("https://shop.test", false).OrderConfirmationURL(order)

	assert.Equal(t,
		"https://shop.test/order-confirmation?id_cart=cart_7&id_order=6f1c3a2e-8d4b-4c41-9f0e-2b7a5d9c1e34&key=abc",
		got)
}

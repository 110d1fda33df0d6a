package cookie

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

const (
	ReferenceCookieName = "payment_ref"
	CartCookieName      = "cart"
)

// referenceRecord is the signed cookie payload
type referenceRecord struct {
	CartID string `json:"cart_id"`
	Flow   string `json:"flow"`
	Value  string `json:"value"`
}

// Codec signs and encrypts the client-held cookies
type Codec struct {
	sc     *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
	logger *zap.Logger
}

// NewCodec creates a cookie codec. blockKey may be empty to sign without encrypting.
func NewCodec(hashKey, blockKey []byte, maxAge time.Duration, secure bool, logger *zap.Logger) *Codec {
	if len(blockKey) == 0 {
		blockKey = nil
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(maxAge.Seconds()))
	return &Codec{sc: sc, maxAge: maxAge, secure: secure, logger: logger}
}

func (c *Codec) write(ctx echo.Context, name string, value interface{}) error {
	encoded, err := c.sc.Encode(name, value)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// read decodes a cookie; a missing or tampered cookie reports false
func (c *Codec) read(ctx echo.Context, name string, dst interface{}) bool {
	ck, err := ctx.Cookie(name)
	if err != nil {
		return false
	}
	if err := c.sc.Decode(name, ck.Value, dst); err != nil {
		c.logger.Warn("discarding invalid cookie", zap.String("cookie", name), zap.Error(err))
		return false
	}
	return true
}

func (c *Codec) expire(ctx echo.Context, name string) {
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CartID reads the cart id from the signed cart cookie
func (c *Codec) CartID(ctx echo.Context) (string, bool) {
	var cartID string
	if !c.read(ctx, CartCookieName, &cartID) || cartID == "" {
		return "", false
	}
	return cartID, true
}

// SetCartID writes the signed cart cookie. The host checkout calls it when
// the cart is created; validation only reads it.
func (c *Codec) SetCartID(ctx echo.Context, cartID string) error {
	return c.write(ctx, CartCookieName, cartID)
}

// References returns the reference store bound to the current request
func (c *Codec) References(ctx echo.Context) *ReferenceStore {
	return &ReferenceStore{codec: c, ctx: ctx}
}

// ReferenceStore is a secondary adapter that implements ReferenceStore output port
// over a signed cookie. The cookie holds a single reference; it belongs to the cart
// whose id it records.
type ReferenceStore struct {
	codec *Codec
	ctx   echo.Context
	// cleared hides a cookie expired earlier in this request
	cleared bool
}

var _ output.ReferenceStore = (*ReferenceStore)(nil)

// Get returns the reference bound to the cart
func (s *ReferenceStore) Get(cartID string) (core.PaymentReference, bool) {
	if s.cleared {
		return core.PaymentReference{}, false
	}
	var rec referenceRecord
	if !s.codec.read(s.ctx, ReferenceCookieName, &rec) || rec.CartID != cartID {
		return core.PaymentReference{}, false
	}
	return core.PaymentReference{
		CartID: rec.CartID,
		Flow:   core.ParseFlowType(rec.Flow),
		Value:  rec.Value,
	}, true
}

// Save binds a reference to its cart, replacing any previous one.
// The host checkout saves the session or intent id it has just created.
func (s *ReferenceStore) Save(ref core.PaymentReference) error {
	s.cleared = false
	return s.codec.write(s.ctx, ReferenceCookieName, referenceRecord{
		CartID: ref.CartID,
		Flow:   string(ref.Flow),
		Value:  ref.Value,
	})
}

// Clear expires the cookie if it belongs to the cart
func (s *ReferenceStore) Clear(cartID string) {
	if _, ok := s.Get(cartID); !ok {
		return
	}
	s.codec.expire(s.ctx, ReferenceCookieName)
	s.cleared = true
}

package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ResolveSession(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) FetchIntent(ctx context.Context, intentID string) (*core.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	intent, _ := args.Get(0).(*core.PaymentIntent)
	return intent, args.Error(1)
}

func (m *mockGateway) CaptureIntent(ctx context.Context, intentID string) (*core.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	intent, _ := args.Get(0).(*core.PaymentIntent)
	return intent, args.Error(1)
}

type fakeReferences struct {
	refs    map[string]core.PaymentReference
	cleared []string
}

func newFakeReferences(refs ...core.PaymentReference) *fakeReferences {
	f := &fakeReferences{refs: map[string]core.PaymentReference{}}
	for _, ref := range refs {
		f.refs[ref.CartID] = ref
	}
	return f
}

func (f *fakeReferences) Get(cartID string) (core.PaymentReference, bool) {
	ref, ok := f.refs[cartID]
	return ref, ok
}

func (f *fakeReferences) Clear(cartID string) {
	f.cleared = append(f.cleared, cartID)
	delete(f.refs, cartID)
}

// fakeOrderRepo serializes Transact per repository, standing in for the cart row lock
type fakeOrderRepo struct {
	mu        sync.Mutex
	carts     map[string]core.Cart
	orders    []*core.Order
	creates   int
	createErr error
	lookupErr error
}

func newFakeOrderRepo(carts ...core.Cart) *fakeOrderRepo {
	r := &fakeOrderRepo{carts: map[string]core.Cart{}}
	for _, c := range carts {
		r.carts[c.ID] = c
	}
	return r
}

func (r *fakeOrderRepo) FindByIntent(ctx context.Context, cartID, intentID string) (*core.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	return r.find(cartID, intentID), nil
}

func (r *fakeOrderRepo) find(cartID, intentID string) *core.Order {
	for _, o := range r.orders {
		if o.CartID == cartID && (intentID == "" || o.PaymentIntentID == intentID) {
			return o
		}
	}
	return nil
}

func (r *fakeOrderRepo) Transact(ctx context.Context, cartID string, fn func(tx output.OrderTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[cartID]
	if !ok {
		return output.ErrCartNotFound
	}
	tx := &fakeOrderTx{repo: r, cart: cart}
	if err := fn(tx); err != nil {
		return err
	}
	r.orders = append(r.orders, tx.pending...)
	return nil
}

type fakeOrderTx struct {
	repo    *fakeOrderRepo
	cart    core.Cart
	pending []*core.Order
}

func (t *fakeOrderTx) Cart() core.Cart { return t.cart }

func (t *fakeOrderTx) FindByIntent(intentID string) (*core.Order, error) {
	return t.repo.find(t.cart.ID, intentID), nil
}

func (t *fakeOrderTx) FindByCart() (*core.Order, error) {
	return t.repo.find(t.cart.ID, ""), nil
}

func (t *fakeOrderTx) Create(order *core.Order) error {
	if t.repo.createErr != nil {
		return t.repo.createErr
	}
	t.repo.creates++
	t.pending = append(t.pending, order)
	return nil
}

type fakeLinks struct{}

func (fakeLinks) CheckoutPageURL() string { return "https://shop.test/order" }

func (fakeLinks) OrderConfirmationURL(order *core.Order) string {
	return "https://shop.test/order-confirmation?id_cart=" + order.CartID
}

type stubFinalizer struct {
	result core.FinalizationResult
	calls  int
}

func (s *stubFinalizer) Finalize(ctx context.Context, cartID string, intent *core.PaymentIntent) core.FinalizationResult {
	s.calls++
	return s.result
}

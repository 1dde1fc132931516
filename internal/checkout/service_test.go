package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/s/levelup/internal/cart"
	"github.com/s/levelup/internal/models"
	"github.com/s/levelup/internal/payment"
	"github.com/s/levelup/internal/storage"
)

// ------------------------------------------------------------------
// Фейки
// ------------------------------------------------------------------

type fakeGateway struct {
	auth  payment.Authorization
	err   error
	calls int

	gotAmount   int64
	gotCurrency string
	gotToken    string
}

func (g *fakeGateway) Authorize(ctx context.Context, amount int64, currency, token string) (payment.Authorization, error) {
	g.calls++
	g.gotAmount = amount
	g.gotCurrency = currency
	g.gotToken = token
	if g.err != nil {
		return payment.Authorization{}, g.err
	}
	return g.auth, nil
}

type fakeLedger struct {
	createErr error
	created   *models.Order
	calls     int

	gotUserID uint
	gotSnap   cart.Snapshot
	gotStatus models.OrderStatus
}

func (l *fakeLedger) CreateFromCart(ctx context.Context, userID uint, snap cart.Snapshot, status models.OrderStatus) (*models.Order, error) {
	l.calls++
	l.gotUserID = userID
	l.gotSnap = snap
	l.gotStatus = status
	if l.createErr != nil {
		return nil, l.createErr
	}
	order := &models.Order{ID: 7, UserID: userID, TotalAmount: snap.Total, Status: status}
	l.created = order
	return order, nil
}

func (l *fakeLedger) Detailed(id uint) (*storage.DetailedOrder, error) {
	if l.created == nil || l.created.ID != id {
		return nil, errors.New("no such order")
	}
	return &storage.DetailedOrder{
		ID:          l.created.ID,
		UserID:      l.created.UserID,
		TotalAmount: l.created.TotalAmount,
		Status:      l.created.Status,
	}, nil
}

type fakeMailer struct {
	err  error
	sent int

	gotTo       string
	gotTemplate string
}

func (m *fakeMailer) Send(to, subject, templateName string, data map[string]interface{}) error {
	m.sent++
	m.gotTo = to
	m.gotTemplate = templateName
	return m.err
}

type fakeCartSession struct {
	cart     *cart.Cart
	clearErr error
	cleared  bool
}

func (s *fakeCartSession) Snapshot() cart.Snapshot { return s.cart.Snapshot() }

func (s *fakeCartSession) Clear() error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cart.Clear()
	s.cleared = true
	return nil
}

func cartWith(prices ...string) *cart.Cart {
	c := cart.New()
	for i, p := range prices {
		c.Add(models.Course{ID: uint(i + 1), Title: "Course", Price: decimal.RequireFromString(p)})
	}
	return c
}

func testUser() *models.User {
	return &models.User{ID: 3, Name: "Test User", Email: "user@levelup.com"}
}

func newTestService(g *fakeGateway, l *fakeLedger, m *fakeMailer) *Service {
	return NewService(l, g, m, zap.NewNop(), "EUR")
}

// ------------------------------------------------------------------
// Сценарии
// ------------------------------------------------------------------

func TestProcessHappyPath(t *testing.T) {
	gateway := &fakeGateway{auth: payment.Authorization{Approved: true, ChargeID: "ch_1"}}
	ledger := &fakeLedger{}
	mailer := &fakeMailer{}
	sess := &fakeCartSession{cart: cartWith("49.99")}

	order, err := newTestService(gateway, ledger, mailer).Process(context.Background(), testUser(), sess, "tok_ok")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if order.Status != models.OrderStatusCompleted {
		t.Errorf("status = %s, want completed", order.Status)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("49.99")) {
		t.Errorf("total = %s, want 49.99", order.TotalAmount)
	}
	if gateway.gotAmount != 4999 || gateway.gotCurrency != "EUR" {
		t.Errorf("gateway called with %d %s, want 4999 EUR", gateway.gotAmount, gateway.gotCurrency)
	}
	if len(ledger.gotSnap.Items) != 1 {
		t.Errorf("ledger got %d items, want 1", len(ledger.gotSnap.Items))
	}
	if !sess.cleared {
		t.Error("cart was not cleared")
	}
	if mailer.sent != 1 || mailer.gotTemplate != "purchase-confirmation" || mailer.gotTo != "user@levelup.com" {
		t.Errorf("unexpected confirmation email: %+v", mailer)
	}
}

func TestProcessEmptyCart(t *testing.T) {
	gateway := &fakeGateway{auth: payment.Authorization{Approved: true}}
	ledger := &fakeLedger{}
	sess := &fakeCartSession{cart: cart.New()}

	_, err := newTestService(gateway, ledger, &fakeMailer{}).Process(context.Background(), testUser(), sess, "tok_ok")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if gateway.calls != 0 {
		t.Error("gateway should not be called for an empty cart")
	}
}

func TestProcessDeclined(t *testing.T) {
	gateway := &fakeGateway{err: payment.ErrDeclined}
	ledger := &fakeLedger{}
	sess := &fakeCartSession{cart: cartWith("79.99")}

	_, err := newTestService(gateway, ledger, &fakeMailer{}).Process(context.Background(), testUser(), sess, "tok_bad")
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("err = %v, want ErrPaymentDeclined", err)
	}
	if ledger.calls != 0 {
		t.Error("no order may be created after a decline")
	}
	// Корзина остается нетронутой.
	if sess.cleared || sess.cart.Snapshot().Count != 1 {
		t.Error("cart must remain unchanged after a decline")
	}
}

func TestProcessAmbiguous(t *testing.T) {
	gateway := &fakeGateway{err: payment.ErrAmbiguous}
	ledger := &fakeLedger{}
	sess := &fakeCartSession{cart: cartWith("79.99")}

	_, err := newTestService(gateway, ledger, &fakeMailer{}).Process(context.Background(), testUser(), sess, "tok_ok")
	if !errors.Is(err, ErrPaymentAmbiguous) {
		t.Fatalf("err = %v, want ErrPaymentAmbiguous", err)
	}
	if errors.Is(err, ErrPaymentDeclined) {
		t.Error("ambiguous outcome must not look like a decline")
	}
	if gateway.calls != 1 {
		t.Errorf("gateway called %d times, ambiguous outcomes are never retried", gateway.calls)
	}
	if ledger.calls != 0 {
		t.Error("no order may be created on an ambiguous outcome")
	}
}

func TestProcessUnknownGatewayErrorTreatedAsAmbiguous(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("weird transport failure")}
	sess := &fakeCartSession{cart: cartWith("79.99")}

	_, err := newTestService(gateway, &fakeLedger{}, &fakeMailer{}).Process(context.Background(), testUser(), sess, "tok_ok")
	if !errors.Is(err, ErrPaymentAmbiguous) {
		t.Fatalf("err = %v, want ErrPaymentAmbiguous", err)
	}
}

func TestProcessNotApprovedWithoutError(t *testing.T) {
	gateway := &fakeGateway{auth: payment.Authorization{Approved: false}}
	ledger := &fakeLedger{}
	sess := &fakeCartSession{cart: cartWith("79.99")}

	_, err := newTestService(gateway, ledger, &fakeMailer{}).Process(context.Background(), testUser(), sess, "tok_ok")
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("err = %v, want ErrPaymentDeclined", err)
	}
	if ledger.calls != 0 {
		t.Error("no order may be created after a decline")
	}
}

func TestProcessReconciliationRequired(t *testing.T) {
	gateway := &fakeGateway{auth: payment.Authorization{Approved: true, ChargeID: "ch_lost"}}
	ledger := &fakeLedger{createErr: errors.New("db down")}
	sess := &fakeCartSession{cart: cartWith("49.99")}

	_, err := newTestService(gateway, ledger, &fakeMailer{}).Process(context.Background(), testUser(), sess, "tok_ok")
	if !errors.Is(err, ErrReconciliationRequired) {
		t.Fatalf("err = %v, want ErrReconciliationRequired", err)
	}
	if ledger.calls != 1 {
		t.Errorf("ledger called %d times, persistence failures are never retried", ledger.calls)
	}
	if sess.cleared {
		t.Error("cart must not be cleared when the order was not persisted")
	}
}

func TestProcessEmailFailureDoesNotFailCheckout(t *testing.T) {
	gateway := &fakeGateway{auth: payment.Authorization{Approved: true, ChargeID: "ch_1"}}
	ledger := &fakeLedger{}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	sess := &fakeCartSession{cart: cartWith("49.99")}

	order, err := newTestService(gateway, ledger, mailer).Process(context.Background(), testUser(), sess, "tok_ok")
	if err != nil {
		t.Fatalf("email failure must not fail checkout: %v", err)
	}
	if order == nil || order.ID == 0 {
		t.Error("order must still be returned")
	}
	if mailer.sent != 1 {
		t.Errorf("mailer called %d times, want 1", mailer.sent)
	}
}

func TestProcessCartClearFailureDoesNotFailCheckout(t *testing.T) {
	gateway := &fakeGateway{auth: payment.Authorization{Approved: true, ChargeID: "ch_1"}}
	ledger := &fakeLedger{}
	mailer := &fakeMailer{}
	sess := &fakeCartSession{cart: cartWith("49.99"), clearErr: errors.New("session store down")}

	order, err := newTestService(gateway, ledger, mailer).Process(context.Background(), testUser(), sess, "tok_ok")
	if err != nil {
		t.Fatalf("cart-clear failure must not fail checkout: %v", err)
	}
	if order == nil {
		t.Fatal("order must still be returned")
	}
	// Письмо все равно уходит.
	if mailer.sent != 1 {
		t.Errorf("mailer called %d times, want 1", mailer.sent)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/s/levelup/internal/cart"
	"github.com/s/levelup/internal/checkout"
)

// sessionCart связывает оркестратор с корзиной текущей сессии.
// Clear записывает пустую корзину в сессию и сохраняет ее сразу,
// до того как хендлер ответит клиенту.
type sessionCart struct {
	session *sessions.Session
	cart    *cart.Cart
	r       *http.Request
	w       http.ResponseWriter
}

func (s *sessionCart) Snapshot() cart.Snapshot {
	return s.cart.Snapshot()
}

func (s *sessionCart) Clear() error {
	s.cart.Clear()
	if err := s.cart.Store(s.session); err != nil {
		return err
	}
	return s.session.Save(s.r, s.w)
}

type checkoutInput struct {
	Token string `json:"token"`
}

// POST /api/checkout
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var input checkoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.Token == "" {
		jsonError(w, "Payment token is required", http.StatusBadRequest)
		return
	}

	session, _ := h.Store.Get(r, sessionName)
	sess := &sessionCart{
		session: session,
		cart:    cart.FromSession(session),
		r:       r,
		w:       w,
	}

	order, err := h.Checkout.Process(r.Context(), user, sess, input.Token)
	if err != nil {
		// Наружу уходят только sanitized-сообщения; детали уже в логах.
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			jsonError(w, "Your cart is empty", http.StatusBadRequest)
		case errors.Is(err, checkout.ErrPaymentDeclined):
			jsonError(w, "Payment was declined. Please try different payment details.", http.StatusPaymentRequired)
		case errors.Is(err, checkout.ErrPaymentAmbiguous):
			jsonError(w, "Payment could not be confirmed. Please contact support before retrying.", http.StatusBadGateway)
		case errors.Is(err, checkout.ErrReconciliationRequired):
			jsonError(w, "Your payment was received but the order could not be recorded. Support has been notified.", http.StatusInternalServerError)
		default:
			jsonError(w, "Checkout failed", http.StatusInternalServerError)
		}
		return
	}

	jsonMessage(w, http.StatusOK, "Order confirmed", map[string]interface{}{
		"orderId": order.ID,
		"order":   order,
	})
}

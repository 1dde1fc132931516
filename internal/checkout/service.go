package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/s/levelup/internal/cart"
	"github.com/s/levelup/internal/mail"
	"github.com/s/levelup/internal/models"
	"github.com/s/levelup/internal/payment"
	"github.com/s/levelup/internal/storage"
)

var (
	// ErrEmptyCart - в корзине нечего покупать.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrPaymentDeclined - шлюз отказал. Заказа нет, корзина цела,
	// пользователь может повторить с другими платежными данными.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrPaymentAmbiguous - исход платежа неизвестен. Заказа нет,
	// автоповтора нет - сверяет оператор.
	ErrPaymentAmbiguous = errors.New("payment outcome ambiguous, manual reconciliation required")

	// ErrReconciliationRequired - деньги списаны, а заказ сохранить
	// не удалось. Повторять нельзя (двойное списание), только ручная
	// сверка по charge id из лога.
	ErrReconciliationRequired = errors.New("charge captured but order not persisted, manual reconciliation required")
)

// Состояния одной попытки оформления. Идут строго по порядку,
// следующий шаг не начинается до завершения предыдущего.
const (
	stateCartValidated         = "cart_validated"
	stateChargeAuthorized      = "charge_authorized"
	stateOrderPersisted        = "order_persisted"
	stateCartCleared           = "cart_cleared"
	stateNotificationAttempted = "notification_attempted"
)

// Ledger - то, что оркестратору нужно от хранилища заказов.
type Ledger interface {
	CreateFromCart(ctx context.Context, userID uint, snap cart.Snapshot, status models.OrderStatus) (*models.Order, error)
	Detailed(id uint) (*storage.DetailedOrder, error)
}

// CartSession - корзина текущей сессии. Clear обязан durably сохранить
// пустую корзину (для cookie-сессий - записать Set-Cookie).
type CartSession interface {
	Snapshot() cart.Snapshot
	Clear() error
}

type Service struct {
	Ledger   Ledger
	Gateway  payment.Gateway
	Mailer   mail.Mailer
	Logger   *zap.Logger
	Currency string
}

func NewService(ledger Ledger, gateway payment.Gateway, mailer mail.Mailer, logger *zap.Logger, currency string) *Service {
	return &Service{
		Ledger:   ledger,
		Gateway:  gateway,
		Mailer:   mailer,
		Logger:   logger,
		Currency: currency,
	}
}

// Process проводит одну попытку оформления заказа:
// валидация корзины -> авторизация списания -> запись заказа ->
// очистка корзины -> письмо. Успех возвращается как только заказ
// записан; очистка корзины и письмо падают молча (с логом).
func (s *Service) Process(ctx context.Context, user *models.User, sess CartSession, paymentToken string) (*models.Order, error) {
	attemptID := uuid.New().String()
	log := s.Logger.With(
		zap.String("attempt_id", attemptID),
		zap.Uint("user_id", user.ID),
	)

	// Idle -> CartValidated. Итог считаем только из серверного
	// снапшота, сумме от клиента не верим.
	snap := sess.Snapshot()
	if snap.Count == 0 {
		return nil, ErrEmptyCart
	}
	amountMinor := snap.Total.Shift(2).IntPart()
	log.Info("checkout state",
		zap.String("state", stateCartValidated),
		zap.Int64("amount_minor", amountMinor),
		zap.Int("items", snap.Count))

	// CartValidated -> ChargeAuthorized.
	auth, err := s.Gateway.Authorize(ctx, amountMinor, s.Currency, paymentToken)
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			log.Info("payment declined", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
		}
		// Все остальное (таймаут, 5xx, неизвестная ошибка) трактуем
		// как неопределенный исход: деньги могли уйти.
		log.Error("payment outcome ambiguous, needs manual reconciliation",
			zap.Int64("amount_minor", amountMinor),
			zap.String("currency", s.Currency),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentAmbiguous, err)
	}
	if !auth.Approved {
		log.Info("payment declined without error detail")
		return nil, ErrPaymentDeclined
	}
	log.Info("checkout state",
		zap.String("state", stateChargeAuthorized),
		zap.String("charge_id", auth.ChargeID))

	// ChargeAuthorized -> OrderPersisted. Сбой здесь - худший случай:
	// списание прошло, заказа нет. Не ретраим (двойное списание).
	order, err := s.Ledger.CreateFromCart(ctx, user.ID, snap, models.OrderStatusCompleted)
	if err != nil {
		log.Error("CHARGE CAPTURED BUT ORDER NOT PERSISTED, manual reconciliation required",
			zap.String("charge_id", auth.ChargeID),
			zap.Int64("amount_minor", amountMinor),
			zap.Error(err))
		return nil, fmt.Errorf("%w (charge %s): %v", ErrReconciliationRequired, auth.ChargeID, err)
	}
	log.Info("checkout state",
		zap.String("state", stateOrderPersisted),
		zap.Uint("order_id", order.ID))

	// OrderPersisted -> CartCleared. Заказ уже закоммичен, откатывать
	// его из-за корзины нельзя - только логируем рассинхрон.
	if err := sess.Clear(); err != nil {
		log.Error("order persisted but cart not cleared",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	} else {
		log.Info("checkout state", zap.String("state", stateCartCleared))
	}

	// CartCleared -> NotificationAttempted. Fire and forget.
	s.sendConfirmation(log, user, order)

	return order, nil
}

func (s *Service) sendConfirmation(log *zap.Logger, user *models.User, order *models.Order) {
	detailed, err := s.Ledger.Detailed(order.ID)
	if err != nil {
		log.Warn("could not load order details for confirmation email",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
		return
	}

	data := map[string]interface{}{
		"order_id": detailed.ID,
		"name":     user.Name,
		"items":    detailed.Items,
		"total":    detailed.TotalAmount.StringFixed(2),
	}
	if err := s.Mailer.Send(user.Email, "Confirmation de commande - LevelUp", "purchase-confirmation", data); err != nil {
		log.Warn("confirmation email failed",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	}
	log.Info("checkout state", zap.String("state", stateNotificationAttempted))
}

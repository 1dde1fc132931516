package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrDeclined - шлюз явно отказал в списании. Денег не ушло,
	// пользователь может повторить с другой картой.
	ErrDeclined = errors.New("payment declined")

	// ErrAmbiguous - исход неизвестен (таймаут, 5xx). Деньги могли
	// уйти, поэтому адаптер НИКОГДА не ретраит сам: повтор может
	// списать дважды. Разбирается оператор вручную.
	ErrAmbiguous = errors.New("payment outcome ambiguous")
)

// Authorization - результат успешной авторизации списания.
type Authorization struct {
	Approved bool   `json:"approved"`
	ChargeID string `json:"charge_id"`
}

// Gateway - синхронная граница с внешним платежным сервисом.
type Gateway interface {
	Authorize(ctx context.Context, amountMinorUnits int64, currency, token string) (Authorization, error)
}

// Client ходит в платежный API по HTTP. Mock-режим (пустой apiURL)
// одобряет все запросы - для локальной разработки без шлюза.
type Client struct {
	apiURL  string
	storeID string
	authKey string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(apiURL, storeID, authKey string, logger *zap.Logger) *Client {
	return &Client{
		apiURL:  apiURL,
		storeID: storeID,
		authKey: authKey,
		http:    &http.Client{},
		logger:  logger,
	}
}

type chargeRequest struct {
	Method   string `json:"method"`
	Store    string `json:"store"`
	AuthKey  string `json:"authkey"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Token    string `json:"token"`
}

type chargeResponse struct {
	Approved bool   `json:"approved"`
	ChargeID string `json:"charge_id"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) Authorize(ctx context.Context, amountMinorUnits int64, currency, token string) (Authorization, error) {
	if c.apiURL == "" {
		c.logger.Info("payment gateway in mock mode, auto-approving",
			zap.Int64("amount", amountMinorUnits),
			zap.String("currency", currency))
		return Authorization{Approved: true, ChargeID: "mock-" + uuid.New().String()}, nil
	}

	payload, err := json.Marshal(chargeRequest{
		Method:   "charge",
		Store:    c.storeID,
		AuthKey:  c.authKey,
		Amount:   amountMinorUnits,
		Currency: currency,
		Token:    token,
	})
	if err != nil {
		return Authorization{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return Authorization{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Запрос мог дойти до шлюза - исход неизвестен.
		return Authorization{}, fmt.Errorf("%w: %v", ErrAmbiguous, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Authorization{}, fmt.Errorf("%w: gateway returned %d", ErrAmbiguous, resp.StatusCode)
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Authorization{}, fmt.Errorf("%w: unreadable gateway response: %v", ErrAmbiguous, err)
	}

	if out.Error != nil {
		return Authorization{}, fmt.Errorf("%w: %s (%s)", ErrDeclined, out.Error.Message, out.Error.Code)
	}
	if !out.Approved {
		return Authorization{}, ErrDeclined
	}

	return Authorization{Approved: true, ChargeID: out.ChargeID}, nil
}

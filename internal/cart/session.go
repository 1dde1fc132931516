package cart

import (
	"encoding/json"

	"github.com/gorilla/sessions"
)

const sessionKey = "cart"

// FromSession достает корзину из сессии. Битое или отсутствующее
// значение даёт пустую корзину - клиент максимум теряет содержимое,
// но не получает 500.
func FromSession(session *sessions.Session) *Cart {
	raw, ok := session.Values[sessionKey].(string)
	if !ok || raw == "" {
		return New()
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return New()
	}
	return &c
}

// Store кладет корзину в сессию. Сохранение самой сессии (session.Save)
// остается на хендлере и обязано случиться до записи ответа.
func (c *Cart) Store(session *sessions.Session) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	session.Values[sessionKey] = string(raw)
	return nil
}

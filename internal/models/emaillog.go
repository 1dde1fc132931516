package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmailLog хранит историю отправленных (или замоканных) писем.
// Запись best-effort: ошибка логирования не влияет на вызывающего.
type EmailLog struct {
	ID        uint   `gorm:"primarykey"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Template  string `json:"template"` // "welcome", "purchase-confirmation"

	Data datatypes.JSON `json:"data"`

	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

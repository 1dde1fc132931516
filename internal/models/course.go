package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course (Курс). Цена копируется в позицию заказа в момент покупки,
// поэтому изменение цены курса не трогает историю заказов.
type Course struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Duration    string          `json:"duration"`
	ImagePath   string          `json:"image_path"`
}

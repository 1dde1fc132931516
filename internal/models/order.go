package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order (Заказ). TotalAmount всегда равен сумме цен его позиций -
// инвариант обеспечивается транзакцией в storage.OrderStore.
type Order struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_amount"`
	Status      OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"-"`

	User  User        `json:"-" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem (Позиция заказа). Неизменяема после создания; Price -
// цена курса на момент покупки, не живая цена из каталога.
type OrderItem struct {
	ID       uint            `gorm:"primarykey" json:"id"`
	OrderID  uint            `gorm:"index" json:"order_id"`
	CourseID uint            `gorm:"not null" json:"course_id"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`

	CreatedAt time.Time `json:"-"`

	// RESTRICT: курс нельзя удалить, пока на него ссылается хоть одна позиция
	Course Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT"`
}

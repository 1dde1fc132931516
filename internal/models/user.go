package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string `gorm:"column:password" json:"-"`
	IsAdmin      bool   `json:"is_admin"`

	// Заполняются только при входе через Google
	GoogleID string `gorm:"index" json:"-"`
	Picture  string `json:"picture,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Orders []Order `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

package database

import (
	"github.com/s/levelup/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Order{},
		&models.OrderItem{},
		&models.UserProgress{},
		&models.EmailLog{},
	)
}

package database

import (
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
)

// Seed наполняет пустую базу стартовыми данными: админ, тестовый
// пользователь и три курса. Если пользователи уже есть - ничего не делает.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Пользователи уже есть, сиды пропускаем.")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{Name: "Admin User", Email: "admin@levelup.com", PasswordHash: string(hash), IsAdmin: true},
		{Name: "Test User", Email: "user@levelup.com", PasswordHash: string(hash)},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	courses := []models.Course{
		{
			Title:       "JavaScript Mastery",
			Description: "Modern JavaScript from the fundamentals to advanced features. Build interactive, dynamic web applications.",
			Price:       decimal.RequireFromString("49.99"),
			Duration:    "12 hours",
			ImagePath:   "/images/javascript-course.jpg",
		},
		{
			Title:       "Full-Stack Web Development",
			Description: "Become a full-stack developer building complete applications with Node.js, Express and React.",
			Price:       decimal.RequireFromString("79.99"),
			Duration:    "24 hours",
			ImagePath:   "/images/fullstack-course.jpg",
		},
		{
			Title:       "UI/UX Design Fundamentals",
			Description: "Learn the fundamentals of UI/UX design and craft intuitive, appealing user interfaces.",
			Price:       decimal.RequireFromString("59.99"),
			Duration:    "15 hours",
			ImagePath:   "/images/uiux-course.jpg",
		},
	}
	if err := db.Create(&courses).Error; err != nil {
		return err
	}

	log.Println("База наполнена стартовыми данными.")
	return nil
}

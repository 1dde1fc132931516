package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
)

type UserStore struct {
	DB *gorm.DB
}

func (s *UserStore) Create(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *UserStore) Find(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) All() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) Update(id uint, updates map[string]interface{}) (*models.User, error) {
	res := s.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.Find(id)
}

func (s *UserStore) Delete(id uint) error {
	res := s.DB.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *UserStore) Count() (int64, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Count(&count).Error
	return count, err
}

// SaveGoogleUser находит пользователя по Google ID; если нашел - обновляет,
// иначе создает нового.
func (s *UserStore) SaveGoogleUser(userInfo models.User) (uint, error) {
	var existing models.User

	result := s.DB.Where("google_id = ?", userInfo.GoogleID).First(&existing)

	if result.Error == nil {
		// Пользователь есть - освежаем имя и аватар.
		// IsAdmin здесь НЕ трогаем, это зона ответственности админа.
		updates := map[string]interface{}{
			"email":   userInfo.Email,
			"name":    userInfo.Name,
			"picture": userInfo.Picture,
		}
		if err := s.DB.Model(&existing).Updates(updates).Error; err != nil {
			return 0, err
		}
		return existing.ID, nil

	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := s.DB.Create(&userInfo).Error; err != nil {
			return 0, err
		}
		return userInfo.ID, nil
	}

	return 0, result.Error
}

package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
)

// ErrCourseInUse - курс упоминается в позициях заказов, удалять нельзя
// (FK RESTRICT в базе дублирует эту проверку).
var ErrCourseInUse = errors.New("course is referenced by order items")

type CourseStore struct {
	DB *gorm.DB
}

func (s *CourseStore) All() ([]models.Course, error) {
	var courses []models.Course
	if err := s.DB.Order("created_at desc").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CourseStore) Find(id uint) (*models.Course, error) {
	var course models.Course
	if err := s.DB.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseStore) Create(course *models.Course) error {
	return s.DB.Create(course).Error
}

func (s *CourseStore) Update(id uint, updates map[string]interface{}) (*models.Course, error) {
	res := s.DB.Model(&models.Course{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.Find(id)
}

// Delete удаляет курс. Исторические заказы важнее каталога: если курс
// хоть раз покупали, возвращаем ErrCourseInUse.
func (s *CourseStore) Delete(id uint) error {
	var refs int64
	if err := s.DB.Model(&models.OrderItem{}).Where("course_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrCourseInUse
	}

	res := s.DB.Delete(&models.Course{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurchasedByUser - курсы из завершенных заказов пользователя.
func (s *CourseStore) PurchasedByUser(userID uint) ([]models.Course, error) {
	var courses []models.Course
	err := s.DB.Model(&models.Course{}).
		Joins("JOIN order_items ON order_items.course_id = courses.id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ?", userID, models.OrderStatusCompleted).
		Distinct("courses.*").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CourseStore) Count() (int64, error) {
	var count int64
	err := s.DB.Model(&models.Course{}).Count(&count).Error
	return count, err
}

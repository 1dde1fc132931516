package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
	"github.com/s/levelup/internal/storage"
)

// ==========================================
// 1. GET  /api/admin/courses (Список)
// 2. POST /api/admin/courses (Создание)
// ==========================================
func (s *Service) HandleCoursesAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		courses, err := s.Courses.All()
		if err != nil {
			jsonError(w, "Database error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, courses)
	case http.MethodPost:
		s.createCourse(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ==========================================
// 3. PUT    /api/admin/courses/{id} (Обновление)
// 4. DELETE /api/admin/courses/{id} (Удаление)
// ==========================================
func (s *Service) HandleCourseByIDAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateCourse(w, r, uint(id))
	case http.MethodDelete:
		s.deleteCourse(w, uint(id))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type courseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Duration    string `json:"duration"`
	ImagePath   string `json:"image_path"`
}

func (s *Service) createCourse(w http.ResponseWriter, r *http.Request) {
	var input courseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if input.Title == "" {
		jsonError(w, "Title is required", http.StatusBadRequest)
		return
	}
	price, err := decimal.NewFromString(input.Price)
	if err != nil || price.IsNegative() {
		jsonError(w, "Price must be a non-negative decimal", http.StatusBadRequest)
		return
	}

	course := models.Course{
		Title:       input.Title,
		Description: input.Description,
		Price:       price,
		Duration:    input.Duration,
		ImagePath:   input.ImagePath,
	}
	if err := s.Courses.Create(&course); err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (s *Service) updateCourse(w http.ResponseWriter, r *http.Request, id uint) {
	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Price       *string `json:"price"`
		Duration    *string `json:"duration"`
		ImagePath   *string `json:"image_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		price, err := decimal.NewFromString(*input.Price)
		if err != nil || price.IsNegative() {
			jsonError(w, "Price must be a non-negative decimal", http.StatusBadRequest)
			return
		}
		// Уже проданные курсы не подорожают задним числом: позиции
		// заказов хранят цену копией.
		updates["price"] = price
	}
	if input.Duration != nil {
		updates["duration"] = *input.Duration
	}
	if input.ImagePath != nil {
		updates["image_path"] = *input.ImagePath
	}
	if len(updates) == 0 {
		jsonError(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	course, err := s.Courses.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "Course not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Service) deleteCourse(w http.ResponseWriter, id uint) {
	err := s.Courses.Delete(id)
	if err != nil {
		if errors.Is(err, storage.ErrCourseInUse) {
			jsonError(w, "Course cannot be deleted: it appears in existing orders", http.StatusConflict)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "Course not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Course deleted"})
}

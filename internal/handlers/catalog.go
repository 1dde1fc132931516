package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /api/courses
func (h *Handler) HandleCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Courses.All()
	if err != nil {
		log.Printf("Ошибка загрузки курсов: %v", err)
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// GET /api/courses/{id}
func (h *Handler) HandleCourseByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	course, err := h.Courses.Find(uint(id))
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

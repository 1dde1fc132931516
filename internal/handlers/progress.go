package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm/clause"

	"github.com/s/levelup/internal/models"
)

// GET /api/dashboard - купленные курсы с прогрессом.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	courses, err := h.Courses.PurchasedByUser(userID)
	if err != nil {
		log.Printf("Ошибка загрузки купленных курсов: %v", err)
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	var progress []models.UserProgress
	if err := h.DB.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		log.Printf("Ошибка загрузки прогресса: %v", err)
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	progressByCourse := make(map[uint]int, len(progress))
	for _, p := range progress {
		progressByCourse[p.CourseID] = p.Progress
	}

	type courseView struct {
		Course   models.Course `json:"course"`
		Progress int           `json:"progress"`
	}
	views := make([]courseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, courseView{Course: c, Progress: progressByCourse[c.ID]})
	}

	writeJSON(w, http.StatusOK, views)
}

type progressInput struct {
	Progress int `json:"progress"`
}

// PUT /api/progress/{courseId}
func (h *Handler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	courseID, err := strconv.Atoi(vars["courseId"])
	if err != nil {
		jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	var input progressInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.Progress < 0 || input.Progress > 100 {
		jsonError(w, "Progress must be between 0 and 100", http.StatusBadRequest)
		return
	}

	entry := models.UserProgress{
		UserID:       userID,
		CourseID:     uint(courseID),
		Progress:     input.Progress,
		LastActivity: time.Now(),
	}
	err = h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "last_activity"}),
	}).Create(&entry).Error
	if err != nil {
		log.Printf("Ошибка сохранения прогресса: %v", err)
		jsonError(w, "Failed to save progress", http.StatusInternalServerError)
		return
	}

	jsonMessage(w, http.StatusOK, "Progress saved", map[string]interface{}{
		"progress": entry.Progress,
	})
}

// GET /api/progress/{courseId}
func (h *Handler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	courseID, err := strconv.Atoi(vars["courseId"])
	if err != nil {
		jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	var entry models.UserProgress
	err = h.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&entry).Error
	if err != nil {
		// Непройденный курс - это 0%, а не ошибка.
		writeJSON(w, http.StatusOK, map[string]interface{}{"progress": 0})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

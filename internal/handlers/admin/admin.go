package admin

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/s/levelup/internal/handlers"
)

// Service - админский слой поверх основного Handler.
type Service struct {
	handlers.Handler
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Ошибка записи JSON-ответа: %v", err)
	}
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// GET /api/admin/stats - сводка для дашборда.
func (s *Service) HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
	userCount, err := s.Users.Count()
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	courseCount, err := s.Courses.Count()
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	orderCount, err := s.Orders.Count()
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	revenue, err := s.Orders.TotalRevenue()
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"userCount":   userCount,
		"courseCount": courseCount,
		"orderCount":  orderCount,
		"revenue":     revenue.StringFixed(2),
	})
}

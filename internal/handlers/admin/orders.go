package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
	"github.com/s/levelup/internal/storage"
)

// GET /api/admin/orders
func (s *Service) HandleOrdersAPI(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.All()
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GET /api/admin/orders/{id}
func (s *Service) HandleOrderByIDAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := s.Orders.Detailed(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "Order not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// PUT /api/admin/orders/{id}/status
// Отмена заказа меняет только статус, никаких возвратов денег.
func (s *Service) HandleOrderStatusAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	order, err := s.Orders.UpdateStatus(uint(id), models.OrderStatus(input.Status))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "Order not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, storage.ErrInvalidTransition) {
			jsonError(w, "Only pending orders can be completed or cancelled", http.StatusConflict)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

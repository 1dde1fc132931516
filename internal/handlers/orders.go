package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /api/orders - история заказов текущего пользователя.
func (h *Handler) HandleOrderHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	orders, err := h.Orders.ByUser(userID)
	if err != nil {
		log.Printf("Ошибка загрузки заказов пользователя %d: %v", userID, err)
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GET /api/orders/{id} - детали заказа, только своего.
func (h *Handler) HandleOrderDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := h.Orders.Detailed(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "Order not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Чужой заказ неотличим от несуществующего.
	if order.UserID != userID {
		jsonError(w, "Order not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

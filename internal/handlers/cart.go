package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/cart"
)

// GET /api/cart
func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	c := cart.FromSession(session)
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// POST /api/cart/add/{courseId}
func (h *Handler) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDFromPath(w, r)
	if !ok {
		return
	}

	course, err := h.Courses.Find(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "Course not found", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка чтения курса %d: %v", courseID, err)
		jsonError(w, "Failed to add course to cart", http.StatusInternalServerError)
		return
	}

	session, _ := h.Store.Get(r, sessionName)
	c := cart.FromSession(session)

	if err := c.Add(*course); err != nil {
		if errors.Is(err, cart.ErrAlreadyInCart) {
			// Не фатально: сообщаем клиенту, корзина не меняется.
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success":   false,
				"cartCount": len(c.Items),
				"message":   "This course is already in your cart",
			})
			return
		}
		jsonError(w, "Failed to add course to cart", http.StatusInternalServerError)
		return
	}

	// Сессию сохраняем ДО ответа: упавший save не должен молча
	// потерять корзину, о которой мы уже отчитались клиенту.
	if !h.saveCart(w, r, session, c) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"cartCount": len(c.Items),
		"message":   fmt.Sprintf("%q has been added to your cart", course.Title),
	})
}

// POST /api/cart/remove/{courseId}
func (h *Handler) HandleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDFromPath(w, r)
	if !ok {
		return
	}

	session, _ := h.Store.Get(r, sessionName)
	c := cart.FromSession(session)

	if err := c.Remove(courseID); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "Course not found in cart",
		})
		return
	}

	if !h.saveCart(w, r, session, c) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"cartCount": len(c.Items),
		"cartTotal": c.Total,
		"message":   "Course removed from cart",
	})
}

// POST /api/cart/clear
func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	c := cart.FromSession(session)
	c.Clear()

	if !h.saveCart(w, r, session, c) {
		return
	}

	jsonMessage(w, http.StatusOK, "Cart cleared", nil)
}

func (h *Handler) saveCart(w http.ResponseWriter, r *http.Request, session *sessions.Session, c *cart.Cart) bool {
	if err := c.Store(session); err != nil {
		log.Printf("Ошибка сериализации корзины: %v", err)
		jsonError(w, "Failed to update cart", http.StatusInternalServerError)
		return false
	}
	if err := session.Save(r, w); err != nil {
		log.Printf("Ошибка сохранения сессии: %v", err)
		jsonError(w, "Failed to update cart", http.StatusInternalServerError)
		return false
	}
	return true
}

func courseIDFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["courseId"])
	if err != nil || id <= 0 {
		jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

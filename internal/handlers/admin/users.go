package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /api/admin/users
func (s *Service) HandleUsersAPI(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.All()
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GET/PUT/DELETE /api/admin/users/{id}
func (s *Service) HandleUserByIDAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getUser(w, uint(id))
	case http.MethodPut:
		s.updateUser(w, r, uint(id))
	case http.MethodDelete:
		s.deleteUser(w, uint(id))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Service) getUser(w http.ResponseWriter, id uint) {
	user, err := s.Users.Find(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "User not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	orders, err := s.Orders.ByUser(id)
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	courses, err := s.Courses.PurchasedByUser(id)
	if err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"orders":  orders,
		"courses": courses,
	})
}

func (s *Service) updateUser(w http.ResponseWriter, r *http.Request, id uint) {
	var input struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		IsAdmin *bool   `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.IsAdmin != nil {
		updates["is_admin"] = *input.IsAdmin
	}
	if len(updates) == 0 {
		jsonError(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	user, err := s.Users.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "User not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(w, "This email address is already in use", http.StatusConflict)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

func (s *Service) deleteUser(w http.ResponseWriter, id uint) {
	if err := s.Users.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "User not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "User deleted"})
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type profileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PUT /api/settings/profile - смена имени и email текущего пользователя.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var input profileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.Name == "" || input.Email == "" {
		jsonError(w, "Name and email are required", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Update(userID, map[string]interface{}{
		"name":  input.Name,
		"email": input.Email,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(w, "This email address is already in use", http.StatusConflict)
			return
		}
		log.Printf("Ошибка обновления профиля %d: %v", userID, err)
		jsonError(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	// Сессия хранит имя и email - освежаем, чтобы не отдавать старые.
	h.storeIdentity(w, r, user)
	jsonMessage(w, http.StatusOK, "Profile updated", map[string]interface{}{"user": user})
}

type passwordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// PUT /api/settings/password - смена пароля с проверкой текущего.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(r)
	if !ok {
		jsonError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var input passwordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.NewPassword == "" {
		jsonError(w, "New password is required", http.StatusBadRequest)
		return
	}
	if input.NewPassword != input.ConfirmPassword {
		jsonError(w, "Passwords do not match", http.StatusBadRequest)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		jsonError(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if _, err := h.Users.Update(user.ID, map[string]interface{}{"password": string(hash)}); err != nil {
		log.Printf("Ошибка смены пароля %d: %v", user.ID, err)
		jsonError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	jsonMessage(w, http.StatusOK, "Password changed", nil)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
)

type registerInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// POST /api/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if input.Name == "" || input.Email == "" || input.Password == "" {
		jsonError(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}
	if input.Password != input.ConfirmPassword {
		jsonError(w, "Passwords do not match", http.StatusBadRequest)
		return
	}

	if _, err := h.Users.FindByEmail(input.Email); err == nil {
		jsonError(w, "This email address is already in use", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := h.Users.Create(&user); err != nil {
		// Гонка двух регистраций на один email упирается в uniqueIndex.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(w, "This email address is already in use", http.StatusConflict)
			return
		}
		log.Printf("Ошибка создания пользователя: %v", err)
		jsonError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	h.storeIdentity(w, r, &user)

	// Приветственное письмо - best effort.
	if err := h.Mailer.Send(user.Email, "Bienvenue sur LevelUp", "welcome", map[string]interface{}{
		"name": user.Name,
	}); err != nil {
		log.Printf("Не удалось отправить приветственное письмо: %v", err)
	}

	jsonMessage(w, http.StatusCreated, "Account created", map[string]interface{}{"user": user})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	user, err := h.Users.FindByEmail(input.Email)
	if err != nil {
		jsonError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		jsonError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	h.storeIdentity(w, r, user)
	jsonMessage(w, http.StatusOK, "Logged in", map[string]interface{}{"user": user})
}

// GET|POST /logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Printf("Ошибка сохранения сессии: %v", err)
		jsonError(w, "Logout failed", http.StatusInternalServerError)
		return
	}
	jsonMessage(w, http.StatusOK, "Logged out", nil)
}

func (h *Handler) storeIdentity(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, _ := h.Store.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["email"] = user.Email
	session.Values["name"] = user.Name
	session.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   86400 * 7,
	}
	if err := session.Save(r, w); err != nil {
		log.Printf("Ошибка сохранения сессии: %v", err)
	}
}

// -------------------------------------------------------------------------
// Google OAuth
// -------------------------------------------------------------------------

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.OAuth.AuthCodeURL("random_state")
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("state") != "random_state" {
		http.Error(w, "Invalid state", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	token, err := h.OAuth.Exchange(context.Background(), code)
	if err != nil {
		http.Error(w, "Token exchange error", http.StatusBadRequest)
		return
	}

	client := h.OAuth.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "Google API error", http.StatusBadRequest)
		return
	}
	defer resp.Body.Close()

	var userInfo struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		http.Error(w, "JSON decode error", http.StatusInternalServerError)
		return
	}

	// У Google-пользователя нет пароля - ставим случайный хеш,
	// чтобы вход по паролю для него был невозможен.
	placeholder, _ := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)

	userID, err := h.Users.SaveGoogleUser(models.User{
		GoogleID:     userInfo.ID,
		Email:        userInfo.Email,
		Name:         userInfo.Name,
		Picture:      userInfo.Picture,
		PasswordHash: string(placeholder),
	})
	if err != nil {
		http.Error(w, "DB save error", http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Find(userID)
	if err != nil {
		http.Error(w, "DB read error", http.StatusInternalServerError)
		return
	}

	h.storeIdentity(w, r, user)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

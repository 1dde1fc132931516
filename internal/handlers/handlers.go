package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/checkout"
	"github.com/s/levelup/internal/mail"
	"github.com/s/levelup/internal/models"
	"github.com/s/levelup/internal/storage"
)

const sessionName = "session"

type Handler struct {
	DB    *gorm.DB
	Store *sessions.CookieStore
	OAuth *oauth2.Config

	Users    *storage.UserStore
	Courses  *storage.CourseStore
	Orders   *storage.OrderStore
	Checkout *checkout.Service
	Mailer   mail.Mailer
}

func NewHandler(db *gorm.DB, store *sessions.CookieStore, oauthCfg *oauth2.Config, svc *checkout.Service, mailer mail.Mailer) *Handler {
	return &Handler{
		DB:       db,
		Store:    store,
		OAuth:    oauthCfg,
		Users:    &storage.UserStore{DB: db},
		Courses:  &storage.CourseStore{DB: db},
		Orders:   &storage.OrderStore{DB: db},
		Checkout: svc,
		Mailer:   mailer,
	}
}

func (h *Handler) GetAuthenticatedUserID(r *http.Request) (uint, bool) {
	session, _ := h.Store.Get(r, sessionName)

	userIDValue := session.Values["user_id"]
	userID, ok := userIDValue.(uint)

	return userID, ok && userID != 0
}

// CurrentUser перечитывает пользователя из базы - сессия могла
// устареть (смена email, снятие админки).
func (h *Handler) CurrentUser(r *http.Request) (*models.User, bool) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		return nil, false
	}
	user, err := h.Users.Find(userID)
	if err != nil {
		return nil, false
	}
	return user, true
}

// -------------------------------------------------------------------------
// JSON helpers
// -------------------------------------------------------------------------

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

func jsonMessage(w http.ResponseWriter, status int, message string, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"success": true,
		"message": message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, status, payload)
}

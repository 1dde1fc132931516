package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/s/levelup/internal/handlers"
)

func deny(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// RequireAuth пускает только аутентифицированных пользователей.
func RequireAuth(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := h.GetAuthenticatedUserID(r); !ok {
				deny(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

// RequireAdmin пускает только админов. Роль проверяем по базе,
// а не по сессии - админку могли снять после входа.
func RequireAdmin(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := h.CurrentUser(r)
			if !ok {
				deny(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if !user.IsAdmin {
				deny(w, "Admin access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

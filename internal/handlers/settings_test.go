package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/s/levelup/internal/mail"
	"github.com/s/levelup/internal/models"
)

func setupSettingsTest(t *testing.T) *mux.Router {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store := sessions.NewCookieStore([]byte("test-key"))
	mailer := mail.NewSMTPMailer("localhost", 25, "", "", "noreply@levelup.com", true, nil, zap.NewNop())
	h := NewHandler(db, store, nil, nil, mailer)

	r := mux.NewRouter()
	r.HandleFunc("/api/register", h.HandleRegister).Methods("POST")
	r.HandleFunc("/api/login", h.HandleLogin).Methods("POST")
	r.HandleFunc("/api/settings/profile", h.HandleUpdateProfile).Methods("PUT")
	r.HandleFunc("/api/settings/password", h.HandleChangePassword).Methods("PUT")

	return r
}

// doJSON - как do, но с JSON-телом.
func doJSON(t *testing.T, router *mux.Router, method, path, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if set := rec.Result().Cookies(); len(set) > 0 {
		cookies = set
	}
	return rec, cookies
}

func registerUser(t *testing.T, router *mux.Router, name, email, password string) []*http.Cookie {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":%q,"confirm_password":%q}`, name, email, password, password)
	rec, cookies := doJSON(t, router, "POST", "/api/register", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	return cookies
}

func TestUpdateProfile(t *testing.T) {
	router := setupSettingsTest(t)
	cookies := registerUser(t, router, "Test User", "user@levelup.com", "password123")

	rec, cookies := doJSON(t, router, "PUT", "/api/settings/profile",
		`{"name":"Renamed User","email":"renamed@levelup.com"}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update returned %d: %s", rec.Code, rec.Body.String())
	}
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	if user["name"] != "Renamed User" || user["email"] != "renamed@levelup.com" {
		t.Errorf("unexpected user in response: %v", user)
	}

	// Вход по новому email и старому паролю.
	rec, _ = doJSON(t, router, "POST", "/api/login",
		`{"email":"renamed@levelup.com","password":"password123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login with updated email returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	router := setupSettingsTest(t)
	registerUser(t, router, "Taken", "taken@levelup.com", "password123")
	cookies := registerUser(t, router, "Other", "other@levelup.com", "password123")

	rec, _ := doJSON(t, router, "PUT", "/api/settings/profile",
		`{"name":"Other","email":"taken@levelup.com"}`, cookies)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email returned %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateProfileRequiresAuth(t *testing.T) {
	router := setupSettingsTest(t)

	rec, _ := doJSON(t, router, "PUT", "/api/settings/profile",
		`{"name":"X","email":"x@levelup.com"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated update returned %d, want 401", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	router := setupSettingsTest(t)
	cookies := registerUser(t, router, "Test User", "user@levelup.com", "password123")

	rec, _ := doJSON(t, router, "PUT", "/api/settings/password",
		`{"current_password":"password123","new_password":"newpass456","confirm_password":"newpass456"}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("password change returned %d: %s", rec.Code, rec.Body.String())
	}

	// Старый пароль больше не подходит, новый - подходит.
	rec, _ = doJSON(t, router, "POST", "/api/login",
		`{"email":"user@levelup.com","password":"password123"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with old password returned %d, want 401", rec.Code)
	}
	rec, _ = doJSON(t, router, "POST", "/api/login",
		`{"email":"user@levelup.com","password":"newpass456"}`, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	router := setupSettingsTest(t)
	cookies := registerUser(t, router, "Test User", "user@levelup.com", "password123")

	rec, _ := doJSON(t, router, "PUT", "/api/settings/password",
		`{"current_password":"wrong","new_password":"newpass456","confirm_password":"newpass456"}`, cookies)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current password returned %d, want 401", rec.Code)
	}

	// Пароль не изменился.
	rec, _ = doJSON(t, router, "POST", "/api/login",
		`{"email":"user@levelup.com","password":"password123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login with unchanged password returned %d", rec.Code)
	}
}

func TestChangePasswordMismatch(t *testing.T) {
	router := setupSettingsTest(t)
	cookies := registerUser(t, router, "Test User", "user@levelup.com", "password123")

	rec, _ := doJSON(t, router, "PUT", "/api/settings/password",
		`{"current_password":"password123","new_password":"newpass456","confirm_password":"different"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched confirmation returned %d, want 400", rec.Code)
	}
}

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/s/levelup/internal/auth"
	"github.com/s/levelup/internal/checkout"
	"github.com/s/levelup/internal/config"
	"github.com/s/levelup/internal/database"
	"github.com/s/levelup/internal/handlers"
	"github.com/s/levelup/internal/handlers/admin"
	"github.com/s/levelup/internal/mail"
	"github.com/s/levelup/internal/middleware"
	"github.com/s/levelup/internal/payment"
	"github.com/s/levelup/internal/storage"
)

func main() {
	// ---------------------------
	// 0. Загрузка переменных окружения
	// ---------------------------
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: Не удалось загрузить файл .env. Используются системные переменные.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Ошибка чтения конфигурации:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Ошибка инициализации логгера:", err)
	}
	defer logger.Sync()

	// ---------------------------
	// 1. Подключаем GORM (База данных)
	// ---------------------------
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Ошибка подключения к БД:", err)
	}

	// ---------------------------
	// 2. Делаем миграции
	// ---------------------------
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Ошибка миграции:", err)
	}

	// ---------------------------
	// 3. Запускаем сиды (если нужно)
	// ---------------------------
	if cfg.SeedDB {
		if err := database.Seed(db); err != nil {
			log.Println("Ошибка сидов (возможно, данные уже есть):", err)
		}
	}

	// ---------------------------
	// 4. Настраиваем Google OAuth
	// ---------------------------
	oauthConfig := auth.InitGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	// ---------------------------
	// 5. Настройка сессий
	// ---------------------------
	sessionKey := cfg.SessionKey
	if sessionKey == "" {
		sessionKey = "super-secret-default-key" // Только для разработки!
		log.Println("Внимание: SESSION_KEY не задан, используется дефолтный.")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false, // Поставьте true, если используете HTTPS
	}

	// ---------------------------
	// 6. Внешние сервисы: почта и платежный шлюз
	// ---------------------------
	mailer := mail.NewSMTPMailer(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
		cfg.EmailFrom, cfg.DisableEmails, db, logger,
	)
	gateway := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentStoreID, cfg.PaymentAuthKey, logger)

	ledger := &storage.OrderStore{DB: db}
	checkoutService := checkout.NewService(ledger, gateway, mailer, logger, cfg.Currency)

	// ---------------------------
	// 7. Инициализация Хендлеров
	// ---------------------------
	h := handlers.NewHandler(db, store, oauthConfig, checkoutService, mailer)

	adminService := admin.Service{
		Handler: *h,
	}

	authRequired := middleware.RequireAuth(h)
	adminRequired := middleware.RequireAdmin(h)

	// ---------------------------
	// 8. Роутинг с Gorilla Mux
	// ---------------------------
	r := mux.NewRouter()

	// --- Публичные маршруты ---
	r.HandleFunc("/api/courses", h.HandleCourses).Methods("GET")
	r.HandleFunc("/api/courses/{id}", h.HandleCourseByID).Methods("GET")

	r.HandleFunc("/api/register", h.HandleRegister).Methods("POST")
	r.HandleFunc("/api/login", h.HandleLogin).Methods("POST")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")

	// --- Корзина (живет в сессии, логин не обязателен) ---
	r.HandleFunc("/api/cart", h.HandleGetCart).Methods("GET")
	r.HandleFunc("/api/cart/add/{courseId}", h.HandleAddToCart).Methods("POST")
	r.HandleFunc("/api/cart/remove/{courseId}", h.HandleRemoveFromCart).Methods("POST")
	r.HandleFunc("/api/cart/clear", h.HandleClearCart).Methods("POST")

	// --- Оформление заказа и история ---
	r.HandleFunc("/api/checkout", authRequired(h.HandleCheckout)).Methods("POST")
	r.HandleFunc("/api/orders", authRequired(h.HandleOrderHistory)).Methods("GET")
	r.HandleFunc("/api/orders/{id}", authRequired(h.HandleOrderDetails)).Methods("GET")

	// --- Личный кабинет ---
	r.HandleFunc("/api/dashboard", authRequired(h.HandleDashboard)).Methods("GET")
	r.HandleFunc("/api/settings/profile", authRequired(h.HandleUpdateProfile)).Methods("PUT")
	r.HandleFunc("/api/settings/password", authRequired(h.HandleChangePassword)).Methods("PUT")
	r.HandleFunc("/api/progress/{courseId}", authRequired(h.HandleGetProgress)).Methods("GET")
	r.HandleFunc("/api/progress/{courseId}", authRequired(h.HandleUpdateProgress)).Methods("PUT")

	// --- АДМИН API ---
	r.HandleFunc("/api/admin/stats", adminRequired(adminService.HandleDashboardStats)).Methods("GET")
	r.HandleFunc("/api/admin/users", adminRequired(adminService.HandleUsersAPI)).Methods("GET")
	r.HandleFunc("/api/admin/users/{id}", adminRequired(adminService.HandleUserByIDAPI)).Methods("GET", "PUT", "DELETE")
	r.HandleFunc("/api/admin/courses", adminRequired(adminService.HandleCoursesAPI)).Methods("GET", "POST")
	r.HandleFunc("/api/admin/courses/{id}", adminRequired(adminService.HandleCourseByIDAPI)).Methods("PUT", "DELETE")
	r.HandleFunc("/api/admin/orders", adminRequired(adminService.HandleOrdersAPI)).Methods("GET")
	r.HandleFunc("/api/admin/orders/{id}", adminRequired(adminService.HandleOrderByIDAPI)).Methods("GET")
	r.HandleFunc("/api/admin/orders/{id}/status", adminRequired(adminService.HandleOrderStatusAPI)).Methods("PUT")

	// ---------------------------
	// 9. Запуск сервера
	// ---------------------------
	corsHandler := corsMiddleware(r)
	fmt.Printf("Сервер запущен: http://localhost:%s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с любого источника (для разработки)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

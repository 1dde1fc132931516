package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	SessionKey  string `envconfig:"SESSION_KEY" default:""`
	SeedDB      bool   `envconfig:"SEED_DB" default:"false"`

	// Платежный шлюз
	PaymentAPIURL  string `envconfig:"PAYMENT_API_URL" default:""`
	PaymentStoreID string `envconfig:"PAYMENT_STORE_ID" default:""`
	PaymentAuthKey string `envconfig:"PAYMENT_AUTH_KEY" default:""`
	Currency       string `envconfig:"CURRENCY" default:"EUR"`

	// Почта
	SMTPHost      string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser      string `envconfig:"SMTP_USER" default:""`
	SMTPPass      string `envconfig:"SMTP_PASS" default:""`
	EmailFrom     string `envconfig:"EMAIL_FROM" default:"noreply@levelup.com"`
	DisableEmails bool   `envconfig:"DISABLE_EMAILS" default:"false"`

	// Google OAuth
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" default:""`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

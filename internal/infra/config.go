package infra

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"development"`
	Port           string `env:"PORT" envDefault:"8080"`
	DatabaseURL    string `env:"DATABASE_URL"`
	JWTSecret      string `env:"JWT_SECRET"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"./storage"`
	StorageBaseURL string `env:"STORAGE_BASE_URL"`
	GeoIPDBPath    string `env:"GEOIP_DB_PATH"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	EmailFromAddress string `env:"EMAIL_FROM_ADDRESS" envDefault:"no-reply@platesync.app"`
	EmailFromName    string `env:"EMAIL_FROM_NAME" envDefault:"PlateSync"`
	SendGridAPIKey   string `env:"SENDGRID_API_KEY"`
	SendGridBaseURL  string `env:"SENDGRID_BASE_URL" envDefault:"https://api.sendgrid.com"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceMonthly  string `env:"STRIPE_PRICE_MONTHLY"`
	StripePriceAnnual   string `env:"STRIPE_PRICE_ANNUAL"`

	PlanningCenterClientID     string `env:"PLANNING_CENTER_CLIENT_ID"`
	PlanningCenterClientSecret string `env:"PLANNING_CENTER_CLIENT_SECRET"`
	PlanningCenterBaseURL      string `env:"PLANNING_CENTER_BASE_URL" envDefault:"https://api.planningcenteronline.com"`

	TrialDays        int           `env:"TRIAL_DAYS" envDefault:"30"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RateLimitPerMin  int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"2s"`
	WorkerBatchSize    int           `env:"WORKER_BATCH_SIZE" envDefault:"10"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(cfg.PublicBaseURL) == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if strings.TrimSpace(cfg.StorageBaseURL) == "" {
		cfg.StorageBaseURL = cfg.PublicBaseURL + "/static"
	}
	if _, err := url.Parse(cfg.StorageBaseURL); err != nil {
		return nil, fmt.Errorf("STORAGE_BASE_URL is invalid: %w", err)
	}

	if cfg.TrialDays <= 0 {
		cfg.TrialDays = 30
	}
	if cfg.WorkerBatchSize <= 0 {
		cfg.WorkerBatchSize = 10
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

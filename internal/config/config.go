package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/all-in-blog/internal/models"
)

const (
	EnvDevelopment = "development"

	MailDriverSES = "ses"
	MailDriverLog = "log"

	// MinBcryptCost is the lowest work factor accepted from the environment.
	MinBcryptCost = 10
	maxBcryptCost = 31
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	BcryptCost    int
	DefaultRole   models.Role
	ClientURL     string

	MailDriver   string
	MailFrom     string
	AWSRegion    string
	SESAccessKey string
	SESSecretKey string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		Env:         strings.ToLower(fallback(os.Getenv("APP_ENV"), "production")),
		LogLevel:    fallback(os.Getenv("LOG_LEVEL"), "info"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		RedisAddr:     fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		ClientURL:     fallback(os.Getenv("CLIENT_URL"), "http://localhost:3000"),

		MailFrom:     strings.TrimSpace(os.Getenv("MAIL_FROM")),
		AWSRegion:    fallback(os.Getenv("AWS_REGION"), "me-south-1"),
		SESAccessKey: strings.TrimSpace(os.Getenv("AWS_SES_ACCESS_KEY")),
		SESSecretKey: strings.TrimSpace(os.Getenv("AWS_SES_SECRET_KEY")),
	}

	// The frontend is the only credentialed origin unless configured otherwise.
	cfg.CORSOrigins = parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), cfg.ClientURL))

	var err error
	if cfg.RedisDB, err = parseInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	hours, err := parseInt("SESSION_TTL_HOURS", 24*365)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour
	if hours, err = parseInt("RESET_TOKEN_TTL_HOURS", 24); err != nil {
		return Config{}, err
	}
	cfg.ResetTokenTTL = time.Duration(hours) * time.Hour
	if cfg.BcryptCost, err = parseInt("BCRYPT_COST", MinBcryptCost); err != nil {
		return Config{}, err
	}

	if cfg.DefaultRole, err = models.ParseRole(fallback(os.Getenv("DEFAULT_ROLE"), string(models.RoleUser))); err != nil {
		return Config{}, fmt.Errorf("DEFAULT_ROLE: %w", err)
	}

	defaultDriver := MailDriverSES
	if cfg.IsDevelopment() {
		defaultDriver = MailDriverLog
	}
	cfg.MailDriver = strings.ToLower(fallback(os.Getenv("MAIL_DRIVER"), defaultDriver))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_HOURS must be positive")
	}
	if c.ResetTokenTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL_HOURS must be positive")
	}
	if c.BcryptCost < MinBcryptCost || c.BcryptCost > maxBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", MinBcryptCost, maxBcryptCost)
	}
	switch c.MailDriver {
	case MailDriverLog:
	case MailDriverSES:
		if c.MailFrom == "" {
			return errors.New("MAIL_FROM is required for the ses mail driver")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver)
	}
	return nil
}

// IsDevelopment reports whether APP_ENV is development. Cookies are sent
// without the Secure flag only in development.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const devSecretKey = "dev-secret-change-me"

// Config собирается один раз при старте и дальше передаётся только по ссылке.
type Config struct {
	Port     string `env:"PORT" envDefault:"5000"`
	HTTPAddr string `env:"HTTP_ADDR"`

	SecretKey    string        `env:"SECRET_KEY" envDefault:"dev-secret-change-me"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecure bool          `env:"COOKIE_SECURE"`

	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"instance/local.db"`

	WordsPath string `env:"WORDS_PATH" envDefault:"words.json"`
	GuestCode string `env:"GUEST_CODE"`
	AdminKey  string `env:"ADMIN_KEY"`

	TranslateURL     string        `env:"TRANSLATE_URL" envDefault:"https://api.mymemory.translated.net/get"`
	TranslateSource  string        `env:"TRANSLATE_SOURCE" envDefault:"en"`
	TranslateTimeout time.Duration `env:"TRANSLATE_TIMEOUT" envDefault:"15s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Env       string `env:"ENV" envDefault:"dev"` // dev|prod
	SentryDSN string `env:"SENTRY_DSN"`
	Release   string `env:"RELEASE"`

	// Бот администратора: без токена не запускается.
	BotToken string  `env:"BOT_TOKEN"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.GuestCode = strings.TrimSpace(cfg.GuestCode)
	cfg.AdminKey = strings.TrimSpace(cfg.AdminKey)
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.IsProd() && (cfg.SecretKey == "" || cfg.SecretKey == devSecretKey) {
		return nil, fmt.Errorf("SECRET_KEY must be set in prod")
	}
	if cfg.TranslateTimeout <= 0 {
		return nil, fmt.Errorf("TRANSLATE_TIMEOUT must be positive, got %s", cfg.TranslateTimeout)
	}
	return cfg, nil
}

// Addr: адрес для http.Server: HTTP_ADDR важнее PORT.
func (c *Config) Addr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return ":" + c.Port
}

func (c *Config) IsProd() bool { return strings.EqualFold(c.Env, "prod") }

func (c *Config) BotEnabled() bool { return c.BotToken != "" }

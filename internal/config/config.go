package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config містить усі налаштування сервера, зчитані з оточення та .env.
type Config struct {
	Port            string        `mapstructure:"PORT"`
	AppEnv          string        `mapstructure:"APP_ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	StoreTimeout    time.Duration `mapstructure:"STORE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	// Redis (optional): cross-instance live delivery
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisChannel  string        `mapstructure:"REDIS_CHANNEL"`
	PresenceTTL   time.Duration `mapstructure:"PRESENCE_TTL"`

	// Telegram (optional): offline notifications
	TelegramBotToken string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	LocalesDir       string        `mapstructure:"LOCALES_DIR"`
	NotifyCooldown   time.Duration `mapstructure:"NOTIFY_COOLDOWN"`

	CORSOrigins    string  `mapstructure:"CORS_ORIGINS"`
	// TrustedProxies: IP/CIDR через кому; порожньо = X-Forwarded-For ігнорується
	TrustedProxies string  `mapstructure:"TRUSTED_PROXIES"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"PORT":               "8080",
	"APP_ENV":            "production",
	"DATABASE_URL":       "host=localhost user=user password=password dbname=marketzone port=5432 sslmode=disable",
	"JWT_SECRET":         "",
	"STORE_TIMEOUT":      "5s",
	"SHUTDOWN_TIMEOUT":   "10s",
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"REDIS_CHANNEL":      "marketzone:live",
	"PRESENCE_TTL":       "2h",
	"TELEGRAM_BOT_TOKEN": "",
	"LOCALES_DIR":        "",
	"NOTIFY_COOLDOWN":    "5m",
	"CORS_ORIGINS":       "*",
	"TRUSTED_PROXIES":    "",
	"RATE_LIMIT_RPS":     10.0,
	"RATE_LIMIT_BURST":   50,
}

// Load reads .env (if present) and the process environment and validates
// the result.
func Load() (*Config, error) {
	cfg, err := LoadRaw()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadRaw is Load without validation, for tools that need only part of it.
func LoadRaw() (*Config, error) {
	// .env is optional; real deployments pass plain env vars
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string { return splitList(c.CORSOrigins) }

// TrustedProxyList splits TRUSTED_PROXIES on commas. Nil means no proxy is
// trusted and the client IP is the socket peer.
func (c *Config) TrustedProxyList() []string { return splitList(c.TrustedProxies) }

func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	DocstoreDriver string `mapstructure:"DOCSTORE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32  `mapstructure:"DB_MIN_CONNS"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDatabase  string `mapstructure:"MONGO_DATABASE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	CollectionEnv  string `mapstructure:"COLLECTION_ENV"`

	OwnerEmails    []string      `mapstructure:"OWNER_EMAILS"`
	AuthSigningKey string        `mapstructure:"AUTH_SIGNING_KEY"`
	AuthTokenTTL   time.Duration `mapstructure:"AUTH_TOKEN_TTL"`
	AuthResetTTL   time.Duration `mapstructure:"AUTH_RESET_TTL"`

	RetryMaxAttempts int           `mapstructure:"RETRY_MAX_ATTEMPTS"`
	RetryBackoff     time.Duration `mapstructure:"RETRY_BACKOFF"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL"`
	Timezone         string        `mapstructure:"TIMEZONE"`

	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
	PublicURL    string `mapstructure:"PUBLIC_URL"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FILE",
	"DOCSTORE_DRIVER", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"MONGO_URI", "MONGO_DATABASE", "REDIS_URL", "COLLECTION_ENV",
	"OWNER_EMAILS", "AUTH_SIGNING_KEY", "AUTH_TOKEN_TTL", "AUTH_RESET_TTL",
	"RETRY_MAX_ATTEMPTS", "RETRY_BACKOFF", "CACHE_TTL", "TIMEZONE",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "PUBLIC_URL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DOCSTORE_DRIVER", "postgres")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("MONGO_DATABASE", "primelabs")
	v.SetDefault("COLLECTION_ENV", "prod")
	v.SetDefault("AUTH_TOKEN_TTL", "1h")
	v.SetDefault("AUTH_RESET_TTL", "30m")
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_BACKOFF", "1s")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("PUBLIC_URL", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env values arrive as one comma separated string.
	cfg.OwnerEmails = splitList(v.GetString("OWNER_EMAILS"))
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.DocstoreDriver = strings.ToLower(strings.TrimSpace(cfg.DocstoreDriver))
	cfg.CollectionEnv = strings.ToLower(strings.TrimSpace(cfg.CollectionEnv))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RecordsCollection and ExpensesCollection pick the prod or dev collection.
func (c *Config) RecordsCollection() string {
	if c.CollectionEnv == "dev" {
		return "medical_records_dev"
	}
	return "medical_records"
}

func (c *Config) ExpensesCollection() string {
	if c.CollectionEnv == "dev" {
		return "expenses_dev"
	}
	return "expenses"
}

// Location loads the business timezone used for day and month boundaries.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if len(c.OwnerEmails) == 0 {
		return fmt.Errorf("OWNER_EMAILS is required")
	}
	if len(c.OwnerEmails) > 2 {
		return fmt.Errorf("OWNER_EMAILS accepts at most 2 addresses, got %d", len(c.OwnerEmails))
	}

	switch c.DocstoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DOCSTORE_DRIVER is \"postgres\"")
		}
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when DOCSTORE_DRIVER is \"mongo\"")
		}
	case "memory":
	default:
		return fmt.Errorf("DOCSTORE_DRIVER must be \"postgres\", \"mongo\", or \"memory\", got %q", c.DocstoreDriver)
	}

	if c.CollectionEnv != "prod" && c.CollectionEnv != "dev" {
		return fmt.Errorf("COLLECTION_ENV must be \"prod\" or \"dev\", got %q", c.CollectionEnv)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.IsProduction() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required in production")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "propertycrm.db"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultChatbotSessionTTL = "30m"
	defaultGenAIModel        = "gemini-2.0-flash"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	AutoMigrate bool

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ChatbotSessionTTL time.Duration

	GenAIAPIKey string
	GenAIModel  string

	CORSAllowedOrigins []string
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", defaultHTTPAddr)
	v.SetDefault("DATABASE_URL", defaultDatabaseURL)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("LOG_FORMAT", defaultLogFormat)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CHATBOT_SESSION_TTL", defaultChatbotSessionTTL)
	v.SetDefault("GENAI_MODEL", defaultGenAIModel)
	return v
}

// FromViper builds and validates a Config from v. Tests pass their own instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:        strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPAddr:      strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		AutoMigrate:   v.GetBool("AUTO_MIGRATE"),
		LogLevel:      strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:     strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		GenAIAPIKey:   strings.TrimSpace(v.GetString("GENAI_API_KEY")),
		GenAIModel:    strings.TrimSpace(v.GetString("GENAI_MODEL")),
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}

	ttl := strings.TrimSpace(v.GetString("CHATBOT_SESSION_TTL"))
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid CHATBOT_SESSION_TTL value %q: %w", ttl, err)
	}
	cfg.ChatbotSessionTTL = d

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.ChatbotSessionTTL <= 0 {
		return fmt.Errorf("CHATBOT_SESSION_TTL must be > 0")
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: console, json")
	}

	if cfg.IsProdLike() {
		if !isPostgres(cfg.DatabaseURL) {
			return fmt.Errorf("in prod/release DATABASE_URL must point to postgres")
		}
		if cfg.RedisAddr == "" {
			return fmt.Errorf("in prod/release REDIS_ADDR must be set")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

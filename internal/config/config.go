// Package config loads service configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "dev-secret-change-in-production"

// Config holds all configuration for the service.
type Config struct {
	AppPort         string
	Environment     string
	LogLevel        string
	LogFormat       string
	RequestTimeout  time.Duration
	UpstreamTimeout time.Duration
	CacheTTL        time.Duration
	RabbitMQURL     string

	Database    DatabaseConfig
	Identity    IdentityConfig
	OpenAI      OpenAIConfig
	HuggingFace HuggingFaceConfig
	Canvas      CanvasConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
}

// DatabaseConfig configures the document store pool.
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// IdentityConfig selects and configures the identity provider.
type IdentityConfig struct {
	Provider          string // local or cognito
	JWTSecret         string
	JWTTTL            time.Duration
	AWSRegion         string
	CognitoUserPoolID string
	CognitoClientID   string
}

// OpenAIConfig configures the LLM client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// HuggingFaceConfig configures the emotion classifier.
type HuggingFaceConfig struct {
	APIToken   string
	URL        string
	MaxRetries int
}

// CanvasConfig configures the LMS client.
type CanvasConfig struct {
	BaseURL        string
	MaxConcurrency int
}

// RedisConfig configures the derived-view cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig bounds requests per client IP on the auth routes.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("CACHE_TTL", "6h")
	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:queens.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("IDENTITY_PROVIDER", "local")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("COGNITO_USER_POOL_ID", "")
	v.SetDefault("COGNITO_CLIENT_ID", "")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_TEMPERATURE", 0.7)

	v.SetDefault("HUGGINGFACE_API_TOKEN", "")
	v.SetDefault("HUGGINGFACE_URL", "https://api-inference.huggingface.co/models/SamLowe/roberta-base-go_emotions")
	v.SetDefault("HUGGINGFACE_MAX_RETRIES", 3)

	v.SetDefault("CANVAS_BASE_URL", "https://canvas.instructure.com/api/v1")
	v.SetDefault("CANVAS_MAX_CONCURRENCY", 4)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_RATE_LIMIT_RPS", 5)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 10)
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		Environment:     v.GetString("ENVIRONMENT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		UpstreamTimeout: v.GetDuration("UPSTREAM_TIMEOUT"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Identity: IdentityConfig{
			Provider:          strings.ToLower(v.GetString("IDENTITY_PROVIDER")),
			JWTSecret:         v.GetString("JWT_SECRET"),
			JWTTTL:            v.GetDuration("JWT_TTL"),
			AWSRegion:         v.GetString("AWS_REGION"),
			CognitoUserPoolID: v.GetString("COGNITO_USER_POOL_ID"),
			CognitoClientID:   v.GetString("COGNITO_CLIENT_ID"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      v.GetString("OPENAI_API_KEY"),
			Model:       v.GetString("OPENAI_MODEL"),
			BaseURL:     v.GetString("OPENAI_BASE_URL"),
			Temperature: float32(v.GetFloat64("OPENAI_TEMPERATURE")),
		},
		HuggingFace: HuggingFaceConfig{
			APIToken:   v.GetString("HUGGINGFACE_API_TOKEN"),
			URL:        v.GetString("HUGGINGFACE_URL"),
			MaxRetries: v.GetInt("HUGGINGFACE_MAX_RETRIES"),
		},
		Canvas: CanvasConfig{
			BaseURL:        strings.TrimRight(v.GetString("CANVAS_BASE_URL"), "/"),
			MaxConcurrency: v.GetInt("CANVAS_MAX_CONCURRENCY"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("AUTH_RATE_LIMIT_RPS"),
			Burst: v.GetInt("AUTH_RATE_LIMIT_BURST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}

	switch c.Identity.Provider {
	case "local":
		if c.IsProduction() && c.Identity.JWTSecret == DefaultJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
	case "cognito":
		if c.Identity.CognitoClientID == "" || c.Identity.CognitoUserPoolID == "" {
			errs = append(errs, errors.New("COGNITO_CLIENT_ID and COGNITO_USER_POOL_ID are required for the cognito provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported IDENTITY_PROVIDER %q", c.Identity.Provider))
	}

	if c.RequestTimeout <= 0 || c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT and UPSTREAM_TIMEOUT must be positive"))
	}
	if c.HuggingFace.MaxRetries < 1 {
		c.HuggingFace.MaxRetries = 1
	}
	if c.Canvas.MaxConcurrency < 1 {
		c.Canvas.MaxConcurrency = 1
	}

	return errors.Join(errs...)
}

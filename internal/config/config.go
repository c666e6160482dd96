package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

type DatabaseConfig struct {
	Driver       string `env:"DB_DRIVER" envDefault:"postgres"`
	URL          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
}

type JWTConfig struct {
	SecretKey     string `env:"SECRET_KEY"`
	Algorithm     string `env:"ALGORITHM" envDefault:"HS256"`
	ExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"1440"`
}

// AccessTokenExpiry returns the configured token lifetime.
func (j JWTConfig) AccessTokenExpiry() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

type ServerConfig struct {
	Port      string `env:"PORT" envDefault:"8000"`
	GinMode   string `env:"GIN_MODE" envDefault:"debug"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

type RateLimitConfig struct {
	Login string `env:"LOGIN_RATE_LIMIT" envDefault:"10-M"`
}

type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for errors
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.Errorf("DB_DRIVER must be one of mysql, postgres, sqlite, got %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return errors.Errorf("ALGORITHM must be HS256, HS384 or HS512, got %q", c.JWT.Algorithm)
	}
	if c.JWT.ExpireMinutes <= 0 {
		return errors.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.JWT.ExpireMinutes)
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	origins := make([]string, 0, len(in))
	for _, o := range in {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

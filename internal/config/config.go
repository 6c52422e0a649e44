// Package config loads runtime settings from INVOICEDASH_ prefixed
// environment variables, optionally seeded from a .env file.
//
// Nested keys use a double underscore: INVOICEDASH_DATABASE__HOST maps to
// database.host.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/random"
)

const (
	envPrefix = "INVOICEDASH_"

	EnvLocal      = "local"
	EnvProduction = "production"
)

type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Redis    RedisConfig    `koanf:"redis" validate:"required"`
	Auth     AuthConfig     `koanf:"auth"`
	Cache    CacheConfig    `koanf:"cache" validate:"required"`
	Jobs     JobsConfig     `koanf:"jobs" validate:"required"`
}

type Primary struct {
	Env      string `koanf:"env" validate:"required,oneof=local development production"`
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
	Version  string `koanf:"version" validate:"required"`
}

type ServerConfig struct {
	Port         int           `koanf:"port" validate:"required,min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

// DatabaseConfig holds PostgreSQL connection parameters. URL, when set,
// takes precedence over the individual fields.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	Host            string        `koanf:"host" validate:"required_without=URL"`
	Port            int           `koanf:"port" validate:"required_without=URL"`
	User            string        `koanf:"user" validate:"required_without=URL"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required_without=URL"`
	SSLMode         string        `koanf:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns        int32         `koanf:"max_conns" validate:"min=1"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// DSN returns the postgres:// connection string for the pool and migrator
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = "sslmode=" + d.SSLMode
	}
	return u.String()
}

type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
	generated bool
}

// Generated reports whether SecretKey was made up at startup, in which case
// issued tokens do not survive a restart.
func (a AuthConfig) Generated() bool {
	return a.generated
}

type CacheConfig struct {
	TTL time.Duration `koanf:"ttl" validate:"required"`
}

type JobsConfig struct {
	SummaryInterval time.Duration `koanf:"summary_interval" validate:"required"`
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":                "local",
		"primary.log_level":          "info",
		"primary.version":            "1.0.0",
		"server.port":                8080,
		"server.read_timeout":        "15s",
		"server.write_timeout":       "15s",
		"server.idle_timeout":        "60s",
		"database.host":              "localhost",
		"database.port":              5432,
		"database.user":              "postgres",
		"database.name":              "invoicedash",
		"database.ssl_mode":          "disable",
		"database.max_conns":         10,
		"database.conn_max_lifetime": "1h",
		"database.migrate_on_start":  true,
		"redis.address":              "localhost:6379",
		"redis.db":                   0,
		"cache.ttl":                  "5m",
		"jobs.summary_interval":      "1m",
	}
}

// Load reads the configuration. A missing auth secret is generated in the
// local environment and rejected everywhere else.
func Load() (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Auth.SecretKey == "" {
		if cfg.Primary.Env != EnvLocal {
			return nil, fmt.Errorf("invalid config: auth.secret_key is required in %s", cfg.Primary.Env)
		}
		cfg.Auth.SecretKey = random.String(32)
		cfg.Auth.generated = true
	}

	return cfg, nil
}

// IsLocal reports whether the service runs on a developer machine
func (c *Config) IsLocal() bool {
	return c.Primary.Env == EnvLocal
}

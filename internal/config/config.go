// Package config loads the service configuration from the environment with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	EncodingPlain  = "plain"
	EncodingBcrypt = "bcrypt"

	AuthModeLive = "live"
	AuthModeStub = "stub"
)

// Config is the resolved service configuration.
type Config struct {
	AppPort          string
	DatabaseDriver   string
	DatabaseDSN      string
	JWTSecret        string
	TokenTTL         time.Duration
	SessionStore     string
	RedisAddr        string
	RabbitMQURL      string
	PasswordEncoding string
	AuthMode         string
	LogLevel         string
}

// SetDefaults registers every key with its default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:securemail.db?cache=shared")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PASSWORD_ENCODING", EncodingPlain)
	v.SetDefault("AUTH_MODE", AuthModeLive)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		SessionStore:     v.GetString("SESSION_STORE"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		PasswordEncoding: v.GetString("PASSWORD_ENCODING"),
		AuthMode:         v.GetString("AUTH_MODE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and unusable combinations.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	switch c.PasswordEncoding {
	case EncodingPlain, EncodingBcrypt:
	default:
		return fmt.Errorf("unsupported PASSWORD_ENCODING %q", c.PasswordEncoding)
	}
	switch c.AuthMode {
	case AuthModeLive:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in live auth mode")
		}
	case AuthModeStub:
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

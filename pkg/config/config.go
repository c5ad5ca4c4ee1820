// Package config loads the void settings from the environment.
package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"io/fs"
	"os"
	"time"
)

const (
	DefaultURL = "https://gtewhvrbsmaxhlcbgkyu.supabase.co"
	// LegacyKeyVar is the build-time variable the key was historically shipped in.
	LegacyKeyVar = "EXPO_PUBLIC_SUPABASE_KEY"
)

type Config struct {
	URL            string        `envconfig:"VOID_URL" default:"https://gtewhvrbsmaxhlcbgkyu.supabase.co" validate:"required,url"`
	Key            string        `envconfig:"VOID_KEY"`
	Backend        string        `envconfig:"VOID_BACKEND" default:"rest" validate:"oneof=rest redis"`
	RedisAddr      string        `envconfig:"VOID_REDIS_ADDR" default:"localhost:6379" validate:"required_if=Backend redis"`
	SessionStore   string        `envconfig:"VOID_SESSION_STORE" default:"file" validate:"oneof=file redis memory"`
	SessionPath    string        `envconfig:"VOID_SESSION_PATH"`
	RequestTimeout time.Duration `envconfig:"VOID_REQUEST_TIMEOUT" default:"10s" validate:"gt=0"`
	LogFile        string        `envconfig:"VOID_LOG_FILE" default:"void.log"`
	LogLevel       string        `envconfig:"VOID_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	ServerAddr     string        `envconfig:"VOID_SERVER_ADDR" default:":5000" validate:"required"`
	// ServerRedisAddr points the dev backend at a real Redis; empty runs it on miniredis.
	ServerRedisAddr string `envconfig:"VOID_SERVER_REDIS_ADDR"`
}

// Load reads an optional .env file and then the process environment. A missing
// key is not an error: requests then fail on the backend side.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("could not read environment: %w", err)
	}
	if cfg.Key == "" {
		cfg.Key = os.Getenv(LegacyKeyVar)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

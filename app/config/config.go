// Package config loads chirp's runtime configuration.
//
// Values come from, in increasing precedence: built-in defaults, an
// optional YAML file, a .env file in the working directory, and CHIRP_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CHIRP_"

// DevSessionSecret signs sessions when nothing else is configured. It is
// only accepted with env "local".
const DevSessionSecret = "chirp-dev-secret"

// Config is the complete server configuration.
type Config struct {
	// Env selects the log format: text for "local", JSON otherwise.
	Env string `yaml:"env" validate:"required"`

	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Directory DirectoryConfig `yaml:"directory"`
	Session   SessionConfig   `yaml:"session"`
	Events    EventsConfig    `yaml:"events"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// StoreConfig selects where posts live.
type StoreConfig struct {
	// Driver is "badger" or "postgres".
	Driver string `yaml:"driver" validate:"oneof=badger postgres"`

	// BadgerPath is the on-disk Badger directory. Local users always live
	// here, even when posts are in Postgres.
	BadgerPath string `yaml:"badger_path" validate:"required"`

	PostgresURL string `yaml:"postgres_url" validate:"required_if=Driver postgres"`
}

// RateLimitConfig configures the per-author post quota.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" validate:"gte=1"`

	// Backend is "memory" or "redis".
	Backend  string `yaml:"backend" validate:"oneof=memory redis"`
	RedisURL string `yaml:"redis_url" validate:"required_if=Backend redis"`
}

// DirectoryConfig selects the identity directory.
type DirectoryConfig struct {
	// Mode is "local" (the Badger user table) or "http".
	Mode   string `yaml:"mode" validate:"oneof=local http"`
	URL    string `yaml:"url" validate:"required_if=Mode http"`
	Secret string `yaml:"secret"`
}

type SessionConfig struct {
	Secret string `yaml:"secret" validate:"required"`
}

// EventsConfig enables post.created notifications when NatsURL is set.
type EventsConfig struct {
	NatsURL string `yaml:"nats_url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Env: "local",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Driver:     "badger",
			BadgerPath: "data/badger",
		},
		RateLimit: RateLimitConfig{
			PerMinute: 3,
			Backend:   "memory",
		},
		Directory: DirectoryConfig{
			Mode: "local",
		},
		Session: SessionConfig{
			Secret: DevSessionSecret,
		},
	}
}

// Load builds the configuration. An empty path skips the YAML file; a
// missing .env file is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("ENV", c.Env)
	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	c.Store.Driver = getEnv("STORE", c.Store.Driver)
	c.Store.BadgerPath = getEnv("DB_PATH", c.Store.BadgerPath)
	c.Store.PostgresURL = getEnv("DATABASE_URL", c.Store.PostgresURL)
	c.RateLimit.Backend = getEnv("RATE_LIMIT_BACKEND", c.RateLimit.Backend)
	c.RateLimit.RedisURL = getEnv("REDIS_URL", c.RateLimit.RedisURL)
	c.Directory.Mode = getEnv("DIRECTORY", c.Directory.Mode)
	c.Directory.URL = getEnv("DIRECTORY_URL", c.Directory.URL)
	c.Directory.Secret = getEnv("DIRECTORY_SECRET", c.Directory.Secret)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.Events.NatsURL = getEnv("NATS_URL", c.Events.NatsURL)

	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_PER_MINUTE: %w", EnvPrefix, err)
		}
		c.RateLimit.PerMinute = n
	}
	return nil
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Env != "local" && c.Session.Secret == DevSessionSecret {
		return fmt.Errorf("invalid config: env %q requires %sSESSION_SECRET or session.secret", c.Env, EnvPrefix)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// Package config loads the job board's runtime configuration.
//
// Values come from three layers, highest precedence last:
//
//  1. built-in defaults (Defaults),
//  2. an optional YAML file,
//  3. environment variables prefixed JOBBOARD_, where "__" separates
//     nesting levels (JOBBOARD_HTTP__PORT -> http.port).
//
// DATABASE_URL, REDIS_URL and JWT_SECRET are also honoured when the layered
// value is empty, so the common twelve-factor names keep working.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for layered environment overrides.
const EnvPrefix = "JOBBOARD_"

// HTTP holds web-server tunables.
type HTTP struct {
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	CORSOrigin   string        `koanf:"cors_origin"`
}

// Database holds the Postgres connection string.
type Database struct {
	URL string `koanf:"url" validate:"required"`
}

// Redis configures the optional listing cache. An empty URL disables it.
type Redis struct {
	URL        string        `koanf:"url"`
	ListingTTL time.Duration `koanf:"listing_ttl"`
}

// Log configures the zap logger.
type Log struct {
	Dir     string `koanf:"dir"`
	Console bool   `koanf:"console"`
	Level   string `koanf:"level" validate:"oneof=debug info warn error"`
}

// RateLimit configures the request limiter. Each limit is requests per
// Window for one caller; 0 leaves that tier unlimited.
type RateLimit struct {
	Enabled         bool          `koanf:"enabled"`
	Window          time.Duration `koanf:"window" validate:"gt=0"`
	PublicLimit     int           `koanf:"public_limit" validate:"min=0"`
	ProfileLimit    int           `koanf:"profile_limit" validate:"min=0"`
	WriteLimit      int           `koanf:"write_limit" validate:"min=0"`
	CredentialLimit int           `koanf:"credential_limit" validate:"min=0"`
	Allowlist       []string      `koanf:"allowlist"`
	Denylist        []string      `koanf:"denylist"`
}

// Scheduler holds cron specs for background jobs. An empty spec disables the job.
type Scheduler struct {
	WarmListings   string `koanf:"warm_listings"`
	SweepRateLimit string `koanf:"sweep_ratelimit"`
}

// Listings caps the public listing queries.
type Listings struct {
	HomeLimit           int `koanf:"home_limit" validate:"min=1,max=100"`
	SimilarDefaultLimit int `koanf:"similar_default_limit" validate:"min=1,max=50"`
}

// Config is the aggregate returned by Load.
type Config struct {
	HTTP      HTTP           `koanf:"http"`
	Database  Database       `koanf:"database"`
	Redis     Redis          `koanf:"redis"`
	JWT       JWTConfig      `koanf:"jwt"`
	Password  PasswordConfig `koanf:"password"`
	Log       Log            `koanf:"log"`
	RateLimit RateLimit      `koanf:"ratelimit"`
	Scheduler Scheduler      `koanf:"scheduler"`
	Listings  Listings       `koanf:"listings"`
}

var validate = validator.New()

// Defaults returns the configuration used when neither file nor environment
// sets a value.
func Defaults() Config {
	return Config{
		HTTP: HTTP{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigin:   "*",
		},
		Redis: Redis{ListingTTL: time.Minute},
		JWT:   JWTConfig{ExpirationHours: 24},
		Password: PasswordConfig{
			BcryptCost: 12,
		},
		Log: Log{Console: true, Level: "info"},
		RateLimit: RateLimit{
			Enabled:         true,
			Window:          time.Minute,
			PublicLimit:     600,
			ProfileLimit:    120,
			WriteLimit:      30,
			CredentialLimit: 10,
		},
		Scheduler: Scheduler{
			WarmListings:   "@every 5m",
			SweepRateLimit: "@every 10m",
		},
		Listings: Listings{HomeLimit: 10, SimilarDefaultLimit: 5},
	}
}

// Load builds a validated Config. path may be empty or point at a file that
// does not exist; in both cases only defaults and environment are used.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvAliases(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct rules and the nested JWT and password settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.JWT.normalize(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Password.normalize(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// envKey maps JOBBOARD_HTTP__PORT to http.port.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

func applyEnvAliases(cfg *Config) {
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = os.Getenv("REDIS_URL")
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	}
}

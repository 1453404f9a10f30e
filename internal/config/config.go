// Package config manages environment variables.
//
// It reads variable from the `.env` file,
// loads them into structured Go types (struct), and
// validates that required values are present so they
// can be reused accross the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the PHONEBOOK_ prefix. A double underscore
	separates nesting levels, single underscores stay part of the key:

		PHONEBOOK_SERVER__PORT              -> server.port
		PHONEBOOK_SERVER__READ_TIMEOUT      -> server.read_timeout
		PHONEBOOK_DATABASE__URI             -> database.uri

	A few unprefixed names that hosting platforms set on their own are read
	first, so the prefixed ones win when both exist.
*/

// EnvPrefix is the prefix every application env var starts with.
const EnvPrefix = "PHONEBOOK_"

// aliases maps well-known unprefixed env vars to config keys.
var aliases = map[string]string{
	"PORT":         "server.port",
	"MONGODB_URI":  "database.uri",
	"DATABASE_URL": "database.uri",
}

// Database drivers understood by the repository layer.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string          `koanf:"port" validate:"required"`
	ReadTimeout        int             `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int             `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int             `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string        `koanf:"cors_allowed_origins" validate:"required"`
	StaticDir          string          `koanf:"static_dir"`
	RateLimit          RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig configures the per-client request limiter.
// A zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=0"`
}

// DatabaseConfig selects the person store and how to reach it.
type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=mongo postgres memory"`

	// URI is the connection string (mongodb://..., postgres://...).
	URI string `koanf:"uri" validate:"required_unless=Driver memory"`

	// Name is the MongoDB database name.
	Name string `koanf:"name" validate:"required"`

	// Collection is the MongoDB collection holding persons.
	Collection string `koanf:"collection" validate:"required"`

	MaxPoolSize    int           `koanf:"max_pool_size" validate:"gte=0"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=1s"`

	// AutoMigrate runs the embedded SQL migrations on startup (postgres only).
	AutoMigrate bool `koanf:"auto_migrate"`
}

// DefaultConfig returns the configuration used for every key the
// environment leaves unset. Server.Port is deliberately left empty.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			StaticDir:          "dist",
		},
		Database: DatabaseConfig{
			Driver:         DriverMongo,
			Name:           "phonebook",
			Collection:     "persons",
			MaxPoolSize:    20,
			ConnectTimeout: 10 * time.Second,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// listKeys are config keys whose env value is a comma-separated list.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

// envKey maps a PHONEBOOK_ env var name to a koanf key path.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// envKeyValue is envKey that also splits list values on commas.
func envKeyValue(s, value string) (string, any) {
	key := envKey(s)
	if !listKeys[key] {
		return key, value
	}

	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config structs, validates it, applies defaults, and returns the resulting config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// Unprefixed aliases first. Returning "" from the callback skips a variable.
	err := k.Load(env.Provider("", ".", func(s string) string {
		return aliases[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env aliases: %w", err)
	}

	err = k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	// Unmarshal over the defaults so unset keys keep their default value.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed, environment always follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

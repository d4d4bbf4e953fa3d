// Package config loads rcflow settings from an optional YAML file, an
// optional .env file and RCFLOW_* environment variables, in that order of
// increasing precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RCFLOW_"

// DefaultFile is read when no config file is given and it exists.
const DefaultFile = "rcflow.yaml"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverLoam     = "loam"
)

// Config is the full application configuration.
type Config struct {
	LogLevel string         `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
}

// ServerConfig configures the HTTP bridge.
type ServerConfig struct {
	Addr        string   `mapstructure:"addr" yaml:"addr" validate:"required"`
	Metrics     bool     `mapstructure:"metrics" yaml:"metrics"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// StoreConfig selects and configures persistence.
// Projects go to Driver, except for redis where they are files under Path.
// Sessions go to Redis for redis, to files under Path for file, and stay in
// memory otherwise.
type StoreConfig struct {
	Driver        string        `mapstructure:"driver" yaml:"driver" validate:"oneof=memory file redis postgres loam"`
	Path          string        `mapstructure:"path" yaml:"path"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db" validate:"gte=0"`
	PostgresDSN   string        `mapstructure:"postgres_dsn" yaml:"postgres_dsn" validate:"required_if=Driver postgres"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" yaml:"session_ttl" validate:"gte=0"`
}

// EngineConfig tunes traversal.
type EngineConfig struct {
	MaxIterations int            `mapstructure:"max_iterations" yaml:"max_iterations" validate:"gte=0"`
	InitialMemory map[string]any `mapstructure:"initial_memory" yaml:"initial_memory"`
}

// SecurityConfig holds base64-encoded AES-256 keys for session encryption.
// PreviousSessionKeys are only used to read sessions written before a rotation.
// RedactMemory lists key patterns masked before sessions are stored.
type SecurityConfig struct {
	SessionKey          string   `mapstructure:"session_key" yaml:"session_key"`
	PreviousSessionKeys []string `mapstructure:"previous_session_keys" yaml:"previous_session_keys"`
	RedactMemory        []string `mapstructure:"redact_memory" yaml:"redact_memory"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Driver:     DriverMemory,
			Path:       ".rcflow",
			RedisAddr:  "localhost:6379",
			SessionTTL: 24 * time.Hour,
		},
		Engine: EngineConfig{
			MaxIterations: 100,
		},
	}
}

// Options selects the sources Load reads.
type Options struct {
	// File is a YAML config file. Empty means DefaultFile if present.
	File string
	// EnvFile is a dotenv file loaded into the process environment. Missing files are ignored.
	EnvFile string
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	raw := map[string]any{}

	file := opts.File
	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	applyEnv(raw, os.Environ())

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var sections = map[string]bool{"server": true, "store": true, "engine": true, "security": true}

// applyEnv overlays RCFLOW_SECTION_KEY variables onto raw.
// RCFLOW_STORE_REDIS_ADDR sets store.redis_addr; RCFLOW_LOG_LEVEL sets log_level.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		section, field, nested := strings.Cut(name, "_")
		if !nested || !sections[section] {
			raw[name] = value
			continue
		}
		sub, ok := raw[section].(map[string]any)
		if !ok {
			sub = map[string]any{}
			raw[section] = sub
		}
		sub[field] = value
	}
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			stringToMemoryHook,
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// stringToMemoryHook parses "k=v,k2=v2" into a map, for initial memory set from the environment.
func stringToMemoryHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Map {
		return data, nil
	}
	out := map[string]any{}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid memory entry %q, want key=value", pair)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}

var validate = validator.New()

// Validate checks field constraints and session keys.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, _, err := c.Security.Keys(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, p := range c.Security.RedactMemory {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid configuration: security.redact_memory %q: %w", p, err)
		}
	}
	return nil
}

// Keys decodes the session keys. A nil active key means encryption is off.
func (s SecurityConfig) Keys() (active []byte, previous [][]byte, err error) {
	if s.SessionKey == "" {
		if len(s.PreviousSessionKeys) > 0 {
			return nil, nil, errors.New("security.previous_session_keys set without security.session_key")
		}
		return nil, nil, nil
	}
	active, err = decodeKey(s.SessionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("security.session_key: %w", err)
	}
	for i, k := range s.PreviousSessionKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("security.previous_session_keys[%d]: %w", i, err)
		}
		previous = append(previous, key)
	}
	return active, previous, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Package config loads gobulb settings from YAML and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig bounds and tunes stress-field computation.
type EngineConfig struct {
	MaxResolution        int     `yaml:"max_resolution" validate:"gte=2,lte=400"`
	MaxDepthRatio        float64 `yaml:"max_depth_ratio" validate:"gt=0,lte=100"`
	MaxIntegrationPoints int     `yaml:"max_integration_points" validate:"gte=8"`

	CacheCapacity int    `yaml:"cache_capacity" validate:"gte=1"`
	CacheDir      string `yaml:"cache_dir"`

	SmoothingSigma         float64 `yaml:"smoothing_sigma" validate:"gte=0,lte=5"`
	SmoothingMinResolution int     `yaml:"smoothing_min_resolution" validate:"gte=0"`

	DefaultMethod string        `yaml:"default_method" validate:"oneof=newmark integration"`
	Workers       int           `yaml:"workers" validate:"gte=0"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	RateLimit      float64       `yaml:"rate_limit" validate:"gt=0"`
	Burst          int           `yaml:"burst" validate:"gte=1"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			MaxResolution:          100,
			MaxDepthRatio:          10,
			MaxIntegrationPoints:   30 * 30 * 30,
			CacheCapacity:          32,
			SmoothingSigma:         0.8,
			SmoothingMinResolution: 20,
			DefaultMethod:          "newmark",
			Timeout:                2 * time.Minute,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RateLimit:      5,
			Burst:          10,
			RequestTimeout: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment overrides applied by ApplyEnv.
const (
	EnvAddr      = "GOBULB_ADDR"
	EnvCacheDir  = "GOBULB_CACHE_DIR"
	EnvLogLevel  = "GOBULB_LOG_LEVEL"
	EnvRateLimit = "GOBULB_RATE_LIMIT"
)

// ApplyEnv overrides settings from environment variables looked up with
// lookup (usually os.LookupEnv) and revalidates.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvCacheDir); ok {
		c.Engine.CacheDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.Server.RateLimit = r
	}
	return c.Validate()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints and reports all
// violations at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return &Error{Problems: msgs}
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.engine.max_resolution"; drop the root type.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	}
}

// Error lists configuration problems.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Package config loads server configuration from defaults, an optional YAML
// file, an optional .env file and CYST_MCP_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/cyst-tools-mcp/internal/analysis"
	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
	"github.com/ironsheep/cyst-tools-mcp/internal/redact"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CYST_MCP_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the complete server configuration.
type Config struct {
	Log struct {
		// Level is one of debug, info, warn, error.
		Level string `yaml:"level"`
		// Mode selects development (console) or production (JSON) output.
		Mode string `yaml:"mode"`
	} `yaml:"log"`

	Analysis struct {
		MMPerPixel   float64 `yaml:"mm_per_pixel"`
		RootFraction float64 `yaml:"root_fraction"`
		// Workers bounds parallel tooth scoring.
		Workers int `yaml:"workers"`
	} `yaml:"analysis"`

	Redact struct {
		Padding       int    `yaml:"padding"`
		DefaultMethod string `yaml:"default_method"`
		FillColor     string `yaml:"fill_color"`
	} `yaml:"redact"`

	Overlay struct {
		LineWidth int  `yaml:"line_width"`
		Legend    bool `yaml:"legend"`
	} `yaml:"overlay"`

	Store struct {
		Backend       string        `yaml:"backend"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"store"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Log.Level = "info"
	cfg.Log.Mode = "production"

	cfg.Analysis.MMPerPixel = analysis.MMPerPixel
	cfg.Analysis.RootFraction = analysis.RootFraction
	cfg.Analysis.Workers = runtime.NumCPU()

	cfg.Redact.Padding = redact.Padding
	cfg.Redact.DefaultMethod = string(redact.Interpolation)
	cfg.Redact.FillColor = imaging.White.Hex()

	cfg.Overlay.LineWidth = 2

	cfg.Store.Backend = BackendMemory
	cfg.Store.RedisAddr = "localhost:6379"
	cfg.Store.TTL = 24 * time.Hour

	return cfg
}

// Load builds the configuration. path names an optional YAML file; a
// missing file is not an error. A .env file in the working directory is
// loaded into the environment when present, without overriding variables
// already set.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Mode = getEnvOrDefault("LOG_MODE", c.Log.Mode)

	c.Analysis.MMPerPixel = getEnvAsFloatOrDefault("MM_PER_PIXEL", c.Analysis.MMPerPixel)
	c.Analysis.RootFraction = getEnvAsFloatOrDefault("ROOT_FRACTION", c.Analysis.RootFraction)
	c.Analysis.Workers = getEnvAsIntOrDefault("WORKERS", c.Analysis.Workers)

	c.Redact.Padding = getEnvAsIntOrDefault("REDACT_PADDING", c.Redact.Padding)
	c.Redact.DefaultMethod = getEnvOrDefault("REDACT_METHOD", c.Redact.DefaultMethod)
	c.Redact.FillColor = getEnvOrDefault("REDACT_FILL_COLOR", c.Redact.FillColor)

	c.Overlay.LineWidth = getEnvAsIntOrDefault("OVERLAY_LINE_WIDTH", c.Overlay.LineWidth)
	c.Overlay.Legend = getEnvAsBoolOrDefault("OVERLAY_LEGEND", c.Overlay.Legend)

	c.Store.Backend = getEnvOrDefault("STORE_BACKEND", c.Store.Backend)
	c.Store.RedisAddr = getEnvOrDefault("REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvAsIntOrDefault("REDIS_DB", c.Store.RedisDB)
	c.Store.TTL = getEnvAsDurationOrDefault("STORE_TTL", c.Store.TTL)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch c.Log.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("invalid log.mode %q", c.Log.Mode)
	}
	if c.Analysis.MMPerPixel <= 0 {
		return fmt.Errorf("analysis.mm_per_pixel must be positive, got %g", c.Analysis.MMPerPixel)
	}
	if c.Analysis.RootFraction <= 0 || c.Analysis.RootFraction > 1 {
		return fmt.Errorf("analysis.root_fraction must be in (0,1], got %g", c.Analysis.RootFraction)
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be at least 1, got %d", c.Analysis.Workers)
	}
	if c.Redact.Padding < 1 {
		return fmt.Errorf("redact.padding must be at least 1, got %d", c.Redact.Padding)
	}
	if _, err := redact.ParseMethod(c.Redact.DefaultMethod); err != nil {
		return fmt.Errorf("invalid redact.default_method: %w", err)
	}
	if _, err := imaging.ParseHexColor(c.Redact.FillColor); err != nil {
		return fmt.Errorf("invalid redact.fill_color: %w", err)
	}
	if c.Overlay.LineWidth < 1 {
		return fmt.Errorf("overlay.line_width must be at least 1, got %d", c.Overlay.LineWidth)
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// LesionOptions returns the lesion metrics options for this configuration.
func (c *Config) LesionOptions() analysis.LesionOptions {
	return analysis.LesionOptions{MMPerPixel: c.Analysis.MMPerPixel}
}

// OverlapOptions returns the root-overlap scoring options.
func (c *Config) OverlapOptions() analysis.OverlapOptions {
	return analysis.OverlapOptions{RootFraction: c.Analysis.RootFraction, Workers: c.Analysis.Workers}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(EnvPrefix + key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(EnvPrefix+key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(EnvPrefix + key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(EnvPrefix + key))
	if err != nil {
		return defaultValue
	}
	return value
}

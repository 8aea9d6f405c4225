package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// chdir switches to dir for the duration of the test so .env lookups are
// isolated.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Analysis.MMPerPixel != 0.1 || cfg.Analysis.RootFraction != 0.6 {
		t.Errorf("analysis defaults: got %+v", cfg.Analysis)
	}
	if cfg.Analysis.Workers != runtime.NumCPU() {
		t.Errorf("workers: got %d", cfg.Analysis.Workers)
	}
	if cfg.Redact.Padding != 10 || cfg.Redact.DefaultMethod != "interpolation" || cfg.Redact.FillColor != "#FFFFFF" {
		t.Errorf("redact defaults: got %+v", cfg.Redact)
	}
	if cfg.Store.Backend != BackendMemory || cfg.Store.TTL != 24*time.Hour {
		t.Errorf("store defaults: got %+v", cfg.Store)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected defaults, got level %q", cfg.Log.Level)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "cyst.yaml")
	yaml := `
log:
  level: debug
  mode: development
analysis:
  mm_per_pixel: 0.25
  workers: 3
redact:
  default_method: blur
store:
  backend: redis
  redis_addr: cache:6379
  ttl: 1h
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Mode != "development" {
		t.Errorf("log: got %+v", cfg.Log)
	}
	if cfg.Analysis.MMPerPixel != 0.25 || cfg.Analysis.Workers != 3 {
		t.Errorf("analysis: got %+v", cfg.Analysis)
	}
	// Unset keys keep their defaults.
	if cfg.Analysis.RootFraction != 0.6 || cfg.Redact.Padding != 10 {
		t.Errorf("defaults lost: %+v %+v", cfg.Analysis, cfg.Redact)
	}
	if cfg.Redact.DefaultMethod != "blur" {
		t.Errorf("method: got %q", cfg.Redact.DefaultMethod)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.RedisAddr != "cache:6379" || cfg.Store.TTL != time.Hour {
		t.Errorf("store: got %+v", cfg.Store)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "cyst.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  workers: 3\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("CYST_MCP_WORKERS", "7")
	t.Setenv("CYST_MCP_REDACT_FILL_COLOR", "#000000")
	t.Setenv("CYST_MCP_OVERLAY_LEGEND", "true")
	t.Setenv("CYST_MCP_STORE_TTL", "90m")
	t.Setenv("CYST_MCP_MM_PER_PIXEL", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.Workers != 7 {
		t.Errorf("workers: got %d, want 7", cfg.Analysis.Workers)
	}
	if cfg.Redact.FillColor != "#000000" || !cfg.Overlay.Legend {
		t.Errorf("overrides: got %+v %+v", cfg.Redact, cfg.Overlay)
	}
	if cfg.Store.TTL != 90*time.Minute {
		t.Errorf("ttl: got %v", cfg.Store.TTL)
	}
	// Unparseable values fall back.
	if cfg.Analysis.MMPerPixel != 0.1 {
		t.Errorf("mm_per_pixel: got %v, want 0.1", cfg.Analysis.MMPerPixel)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CYST_MCP_REDACT_PADDING=4\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	// godotenv sets the variable process-wide; restore it afterwards.
	t.Setenv("CYST_MCP_REDACT_PADDING", "")
	os.Unsetenv("CYST_MCP_REDACT_PADDING")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Redact.Padding != 4 {
		t.Errorf("padding: got %d, want 4", cfg.Redact.Padding)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("log: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log mode", func(c *Config) { c.Log.Mode = "verbose" }, "log.mode"},
		{"mm per pixel", func(c *Config) { c.Analysis.MMPerPixel = 0 }, "mm_per_pixel"},
		{"root fraction", func(c *Config) { c.Analysis.RootFraction = 1.5 }, "root_fraction"},
		{"workers", func(c *Config) { c.Analysis.Workers = 0 }, "workers"},
		{"padding", func(c *Config) { c.Redact.Padding = 0 }, "padding"},
		{"method", func(c *Config) { c.Redact.DefaultMethod = "smudge" }, "default_method"},
		{"fill color", func(c *Config) { c.Redact.FillColor = "#GG0000" }, "fill_color"},
		{"line width", func(c *Config) { c.Overlay.LineWidth = 0 }, "line_width"},
		{"backend", func(c *Config) { c.Store.Backend = "etcd" }, "backend"},
		{"redis addr", func(c *Config) { c.Store.Backend = BackendRedis; c.Store.RedisAddr = "" }, "redis_addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q should mention %q", err, tt.errSub)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "nested", "cyst.yaml")

	cfg := DefaultConfig()
	cfg.Overlay.LineWidth = 4
	cfg.Store.TTL = 30 * time.Minute
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Overlay.LineWidth != 4 || loaded.Store.TTL != 30*time.Minute {
		t.Errorf("round trip: got %+v %+v", loaded.Overlay, loaded.Store)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.MMPerPixel = 0.2
	cfg.Analysis.RootFraction = 0.5
	cfg.Analysis.Workers = 2

	if got := cfg.LesionOptions().MMPerPixel; got != 0.2 {
		t.Errorf("LesionOptions: got %v", got)
	}
	o := cfg.OverlapOptions()
	if o.RootFraction != 0.5 || o.Workers != 2 {
		t.Errorf("OverlapOptions: got %+v", o)
	}
}

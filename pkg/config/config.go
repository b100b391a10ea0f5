// Package config provides configuration for the sweetcorn web host. Values come
// from built-in defaults, an optional YAML file and environment variables, in
// increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alkmst-xyz/sweetcorn-web/web/api"
)

// FileEnv names the environment variable holding the optional YAML config path.
const FileEnv = "SWEETCORN_WEB_CONFIG"

// Config holds all configuration for the web host.
type Config struct {
	// Dev selects the development base URL.
	Dev bool `yaml:"dev"`
	// APIBaseDev overrides the development base URL. Ignored outside development.
	APIBaseDev string `yaml:"api_base_dev"`
	// Origin resolves a relative base URL for server-side requests.
	Origin string `yaml:"origin"`

	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds the page host listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns host:port for the listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// JSON reports whether logs are emitted as JSON.
func (c LogConfig) JSON() bool {
	return c.Format != "text"
}

// TelemetryConfig controls trace export to an OTLP/HTTP collector.
type TelemetryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Endpoint      string        `yaml:"endpoint"`
	Insecure      bool          `yaml:"insecure"`
	ServiceName   string        `yaml:"service_name"`
	SamplingRatio float64       `yaml:"sampling_ratio"`
	ExportTimeout time.Duration `yaml:"export_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Origin: "http://127.0.0.1:13579",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5173,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Endpoint:      "localhost:4318",
			Insecure:      true,
			ServiceName:   "sweetcorn-web",
			SamplingRatio: 1,
			ExportTimeout: 5 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when empty or missing) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml %q: %w", path, err)
	}

	var trailing any
	if err := decoder.Decode(&trailing); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml %q: %w", path, err)
	}
	if trailing != nil {
		return fmt.Errorf("parse yaml %q: multiple yaml documents are not supported", path)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	var err error

	if cfg.Dev, err = getBoolEnv("SWEETCORN_WEB_DEV", cfg.Dev); err != nil {
		return err
	}
	cfg.APIBaseDev = getEnv("VITE_API_BASE_DEV", cfg.APIBaseDev)
	cfg.Origin = getEnv("SWEETCORN_WEB_ORIGIN", cfg.Origin)

	cfg.Server.Host = getEnv("SWEETCORN_WEB_HOST", cfg.Server.Host)
	if cfg.Server.Port, err = getIntEnv("SWEETCORN_WEB_PORT", cfg.Server.Port); err != nil {
		return err
	}
	if cfg.Server.RequestTimeout, err = getDurationEnv("SWEETCORN_WEB_REQUEST_TIMEOUT", cfg.Server.RequestTimeout); err != nil {
		return err
	}
	if cfg.Server.ShutdownTimeout, err = getDurationEnv("SWEETCORN_WEB_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout); err != nil {
		return err
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	// Setting any exporter variable turns telemetry on unless OTEL_SDK_DISABLED says otherwise.
	otelConfigured := false
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); endpoint != "" {
		cfg.Telemetry.Endpoint = endpoint
		otelConfigured = true
	}
	if name := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")); name != "" {
		cfg.Telemetry.ServiceName = name
		otelConfigured = true
	}
	if otelConfigured {
		cfg.Telemetry.Enabled = true
	}
	if raw := strings.TrimSpace(os.Getenv("OTEL_SDK_DISABLED")); raw != "" {
		disabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid OTEL_SDK_DISABLED: %w", err)
		}
		cfg.Telemetry.Enabled = !disabled
	}

	return nil
}

// Validate checks configuration invariants required at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0 (got %s)", c.Server.RequestTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0 (got %s)", c.Server.ShutdownTimeout)
	}

	origin, err := url.Parse(c.Origin)
	if err != nil {
		return fmt.Errorf("parse origin: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return fmt.Errorf("origin must include scheme and host (got %q)", c.Origin)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be one of json, text (got %q)", c.Log.Format)
	}

	if c.Telemetry.Enabled {
		if strings.TrimSpace(c.Telemetry.Endpoint) == "" {
			return errors.New("telemetry.endpoint is required when telemetry.enabled=true")
		}
		if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
			return errors.New("telemetry.service_name is required when telemetry.enabled=true")
		}
		if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
			return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1 (got %f)", c.Telemetry.SamplingRatio)
		}
	}

	return nil
}

// APIBase returns the backend root the API client is built with. A relative
// production base is resolved against Origin.
func (c *Config) APIBase() (api.BaseURL, error) {
	base := api.ResolveBaseURL(api.Environment{Dev: c.Dev, Override: c.APIBaseDev})
	return base.Resolve(c.Origin)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", level)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// Package config provides configuration loading from environment variables,
// with an optional YAML file used as a fallback source.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a required value is missing or malformed.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the configuration for a single posting run.
type Config struct {
	// VK settings
	AccessToken string  `env:"VK_ACCESS_TOKEN, required" validate:"required" json:"-"` // Masked in JSON
	GroupID     int     `env:"VK_GROUP_ID, required" validate:"gt=0" json:"group_id"`
	APIVersion  float64 `env:"VK_API_VERSION, required" validate:"gt=0" json:"api_version"`

	// Storage settings
	ImageFolder string `env:"IMAGE_FOLDER, required" validate:"required" json:"image_folder"`

	Log Logging
}

// AuthConfig holds the configuration for printing the authorization URL.
type AuthConfig struct {
	ClientID   int     `env:"VK_CLIENT_ID, required" validate:"gt=0" json:"client_id"`
	APIVersion float64 `env:"VK_API_VERSION, required" validate:"gt=0" json:"api_version"`

	Log Logging
}

// Logging holds logger settings shared by every command.
type Logging struct {
	Format string `env:"LOG_FORMAT, default=text" validate:"oneof=text json TEXT JSON" json:"log_format"`                                       // "json" or "text"
	Level  string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR" json:"log_level"` // "debug", "info", "warn", "error"
}

// Load reads the run configuration from the environment. When file is not
// empty, its keys are consulted for any variable the environment lacks.
func Load(file string) (*Config, error) {
	cfg := &Config{}
	if err := process(cfg, file); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAuth reads the authorization URL configuration.
func LoadAuth(file string) (*AuthConfig, error) {
	cfg := &AuthConfig{}
	if err := process(cfg, file); err != nil {
		return nil, err
	}
	return cfg, nil
}

func process(target any, file string) error {
	lookuper := envconfig.OsLookuper()
	if file != "" {
		values, err := readFile(file)
		if err != nil {
			return err
		}
		lookuper = envconfig.MultiLookuper(envconfig.OsLookuper(), envconfig.MapLookuper(values))
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   target,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := validator.New().Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// readFile parses a flat YAML document of KEY: value pairs.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return values, nil
}

// String returns a string representation of the config with the token masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{GroupID: %d, APIVersion: %g, ImageFolder: %s, LogFormat: %s, LogLevel: %s}",
		c.GroupID,
		c.APIVersion,
		c.ImageFolder,
		c.Log.Format,
		c.Log.Level,
	)
}

// NewLogger creates a structured logger based on the configuration.
// When Format is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (l Logging) NewLogger() *slog.Logger {
	level := parseLogLevel(l.Level)

	var handler slog.Handler
	if strings.ToLower(l.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides. Nested keys use a
// double underscore: GATEWAY_N8N__WEBHOOK__BASE_URL.
const EnvPrefix = "GATEWAY_"

// DefaultPath is the config file read when no other path is given.
const DefaultPath = "config.yaml"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	N8N       N8NConfig       `koanf:"n8n"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	// Port 0 binds an ephemeral port.
	Port int `koanf:"port" validate:"min=0,max=65535"`
	// RequestTimeout bounds inbound request handling; zero disables it.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// N8NConfig locates the n8n server. Both base URLs are resolved once at
// startup.
type N8NConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key"`
	Webhook WebhookConfig `koanf:"webhook"`
}

type WebhookConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

// LogConfig selects the process logger. Empty values fall back to info and
// json, so configs built in code may leave it unset.
type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json text"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

var defaults = map[string]any{
	"server.port":            8080,
	"server.request_timeout": "0s",
	"log.level":              "info",
	"log.format":             "json",
	"telemetry.service_name": "n8n-gateway",
}

// Load reads path (a missing file is not an error), applies GATEWAY_
// environment overrides and defaults, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.N8N.APIKey = substituteEnvVars(cfg.N8N.APIKey)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and value ranges.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

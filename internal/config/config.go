package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/freewebtopdf/sticker-certifier/internal/pack"
	"github.com/freewebtopdf/sticker-certifier/internal/policy"
)

// Config holds all configuration for the sticker certifier service
type Config struct {
	Server struct {
		Port         int           `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
		BodyLimit    int           `env:"BODY_LIMIT" envDefault:"1048576" validate:"min=1"` // 1MB
	}

	Cache struct {
		MaxSize  int   `env:"CACHE_MAX_SIZE" envDefault:"10000" validate:"min=100"`
		MaxBytes int64 `env:"CACHE_MAX_BYTES" envDefault:"268435456" validate:"min=0"` // 256MB, 0 disables the byte bound
	}

	Catalog struct {
		AssetsDir      string        `env:"ASSETS_DIR" envDefault:"./assets"`
		AssetsURL      string        `env:"ASSETS_URL" validate:"omitempty,url"` // remote origin, replaces ASSETS_DIR when set
		ManifestFile   string        `env:"MANIFEST_FILE"`                       // defaults to contents.json under the assets location
		MaxAssetBytes  int64         `env:"MAX_ASSET_BYTES" envDefault:"1048576" validate:"min=0"`
		RemoteTimeout  time.Duration `env:"REMOTE_TIMEOUT" envDefault:"30s"`
		ReloadInterval time.Duration `env:"CATALOG_RELOAD_INTERVAL" envDefault:"0s"`
	}

	Policy struct {
		Version     string `env:"POLICY_VERSION" envDefault:"v2" validate:"oneof=v1 v2"`
		File        string `env:"POLICY_FILE"`
		Concurrency int    `env:"VALIDATION_CONCURRENCY" envDefault:"4" validate:"min=1,max=64"`
	}

	Security struct {
		CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," validate:"cors_origins"`
		RateLimitRPS   int      `env:"RATE_LIMIT_RPS" envDefault:"100" validate:"min=0"`
		RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"200" validate:"min=0"`
	}

	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
		Format string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	}
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if cfg.Catalog.ManifestFile == "" && cfg.Catalog.AssetsURL == "" {
		cfg.Catalog.ManifestFile = filepath.Join(cfg.Catalog.AssetsDir, pack.ManifestFileName)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration using struct tags
func Validate(cfg *Config) error {
	validator := validator.New()

	if err := validator.RegisterValidation("cors_origins", validateCORSOrigins); err != nil {
		return fmt.Errorf("failed to register cors_origins validation: %w", err)
	}

	if err := validator.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCORSOrigins validates CORS origins format
func validateCORSOrigins(fl validator.FieldLevel) bool {
	origins := fl.Field().Interface().([]string)
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return false
		}
	}
	return true
}

// validateCustomRules performs additional validation beyond struct tags
func validateCustomRules(cfg *Config) error {
	if cfg.Catalog.AssetsURL == "" {
		if cfg.Catalog.AssetsDir == "" {
			return fmt.Errorf("assets directory cannot be empty")
		}
		if cfg.Catalog.ManifestFile == "" {
			return fmt.Errorf("manifest file cannot be empty")
		}
	} else {
		if !strings.HasPrefix(cfg.Catalog.AssetsURL, "http://") && !strings.HasPrefix(cfg.Catalog.AssetsURL, "https://") {
			return fmt.Errorf("assets URL must use http or https")
		}
		if cfg.Catalog.ManifestFile != "" {
			return fmt.Errorf("manifest file cannot be combined with an assets URL")
		}
		if cfg.Catalog.RemoteTimeout < time.Millisecond {
			return fmt.Errorf("remote timeout must be at least 1ms")
		}
	}

	if cfg.Server.ReadTimeout < time.Millisecond {
		return fmt.Errorf("read timeout must be at least 1ms")
	}
	if cfg.Server.WriteTimeout < time.Millisecond {
		return fmt.Errorf("write timeout must be at least 1ms")
	}
	if cfg.Catalog.ReloadInterval != 0 && cfg.Catalog.ReloadInterval < time.Second {
		return fmt.Errorf("catalog reload interval must be 0 or at least 1 second")
	}
	if cfg.Security.RateLimitRPS > 0 && cfg.Security.RateLimitBurst < cfg.Security.RateLimitRPS {
		return fmt.Errorf("rate limit burst must not be lower than the rate")
	}

	return nil
}

// PolicyLimits returns the rule set packs are certified against: the policy
// file when one is configured, otherwise the built-in version
func (cfg *Config) PolicyLimits() (policy.Limits, error) {
	if cfg.Policy.File != "" {
		return policy.LoadFile(cfg.Policy.File)
	}
	return policy.ForVersion(cfg.Policy.Version)
}

// Remote reports whether assets and the manifest are served from ASSETS_URL
func (cfg *Config) Remote() bool {
	return cfg.Catalog.AssetsURL != ""
}

// EnsureDirectories checks that the assets directory exists. Remote catalogs
// have no local directory.
func (cfg *Config) EnsureDirectories() error {
	if cfg.Remote() {
		return nil
	}
	info, err := os.Stat(cfg.Catalog.AssetsDir)
	if err != nil {
		return fmt.Errorf("cannot access assets directory %s: %w", cfg.Catalog.AssetsDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("assets path %s is not a directory", cfg.Catalog.AssetsDir)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
			case "url":
				messages = append(messages, fmt.Sprintf("%s must be a valid URL", e.Field()))
			case "cors_origins":
				messages = append(messages, fmt.Sprintf("%s contains invalid origin format", e.Field()))
			default:
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
			}
		}
		return fmt.Errorf("validation errors: %s", strings.Join(messages, "; "))
	}
	return err
}

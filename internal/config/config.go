package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// validate is the singleton validator instance
var validate = validator.New()

// DefaultConfig returns a configuration suitable for a single-node deployment
func DefaultConfig() types.Config {
	return types.Config{
		Logging: types.LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		API: types.APIConfig{
			Host:          "localhost",
			Port:          8000,
			CORSOrigins:   []string{"*"},
			MaxUploadSize: "100MiB",
			DownloadTTL:   60 * time.Second,
		},
		Database: types.DatabaseConfig{
			Driver: "duckdb",
			Path:   "./nimbus.db",
		},
		Blob: types.BlobConfig{
			Type: "badger",
			Badger: map[string]any{
				"path": "./nimbus-blobs",
			},
		},
		Plans: map[string]string{
			string(types.PlanFree): "20MiB",
			string(types.PlanPro):  "200MiB",
		},
		Auth: types.AuthConfig{
			SessionTTL: 24 * time.Hour,
		},
		Filesystem: types.FilesystemConfig{
			AncestryCheck: true,
		},
	}
}

// Load loads configuration from an optional YAML file and NIMBUS_* environment
// variables, fills defaults and validates the result.
//
// Precedence (highest to lowest): environment, file, defaults.
func Load(configPath string) (*types.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NIMBUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every default with viper so that env-only deployments
// resolve nested keys.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("api.host", d.API.Host)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.public_url", "")
	v.SetDefault("api.cors_origins", d.API.CORSOrigins)
	v.SetDefault("api.max_upload_size", d.API.MaxUploadSize)
	v.SetDefault("api.download_ttl", d.API.DownloadTTL)
	v.SetDefault("api.rate_limit.requests_per_second", 0)
	v.SetDefault("api.rate_limit.burst", 0)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("blob.type", d.Blob.Type)
	v.SetDefault("blob.signing_secret", "")
	v.SetDefault("auth.session_ttl", d.Auth.SessionTTL)
	v.SetDefault("filesystem.ancestry_check", d.Filesystem.AncestryCheck)
	v.SetDefault("metrics.enabled", false)
}

// ApplyDefaults fills zero values and normalizes fields
func ApplyDefaults(cfg *types.Config) {
	d := DefaultConfig()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = d.Logging.Output
	}

	if cfg.API.Host == "" {
		cfg.API.Host = d.API.Host
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = d.API.Port
	}
	if cfg.API.MaxUploadSize == "" {
		cfg.API.MaxUploadSize = d.API.MaxUploadSize
	}
	if cfg.API.DownloadTTL == 0 {
		cfg.API.DownloadTTL = d.API.DownloadTTL
	}
	if cfg.API.PublicURL == "" {
		cfg.API.PublicURL = fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port)
	}
	cfg.API.PublicURL = strings.TrimRight(cfg.API.PublicURL, "/")

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = d.Database.Driver
	}
	if cfg.Database.Path != "" && cfg.Database.Path != ":memory:" && !filepath.IsAbs(cfg.Database.Path) {
		if absPath, err := filepath.Abs(cfg.Database.Path); err == nil {
			cfg.Database.Path = absPath
		}
	}

	if cfg.Blob.Type == "" {
		cfg.Blob.Type = d.Blob.Type
	}
	if cfg.Blob.Type == "badger" && cfg.Blob.Badger == nil {
		cfg.Blob.Badger = d.Blob.Badger
	}

	if cfg.Plans == nil {
		cfg.Plans = map[string]string{}
	}
	for plan, limit := range d.Plans {
		if _, ok := cfg.Plans[plan]; !ok {
			cfg.Plans[plan] = limit
		}
	}

	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = d.Auth.SessionTTL
	}
}

// Validate checks that the configuration parameters are valid
func Validate(cfg *types.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if _, err := humanize.ParseBytes(cfg.API.MaxUploadSize); err != nil {
		return fmt.Errorf("api.max_upload_size: %w", err)
	}

	for _, plan := range []types.Plan{types.PlanFree, types.PlanPro} {
		raw, ok := cfg.Plans[string(plan)]
		if !ok {
			return fmt.Errorf("plans: missing limit for plan %q", plan)
		}
		if _, err := humanize.ParseBytes(raw); err != nil {
			return fmt.Errorf("plans.%s: %w", plan, err)
		}
	}

	if cfg.Blob.Type == "s3" && cfg.Blob.S3 == nil {
		return fmt.Errorf("blob: type is s3 but the s3 section is missing")
	}

	return nil
}

// PlanLimits converts the configured plan sizes to byte counts. The config
// must have passed Validate.
func PlanLimits(cfg *types.Config) map[types.Plan]int64 {
	limits := make(map[types.Plan]int64, len(cfg.Plans))
	for name, raw := range cfg.Plans {
		n, err := humanize.ParseBytes(raw)
		if err != nil {
			continue
		}
		limits[types.Plan(name)] = int64(n)
	}
	return limits
}

// MaxUploadBytes returns api.max_upload_size in bytes
func MaxUploadBytes(cfg *types.Config) int64 {
	n, err := humanize.ParseBytes(cfg.API.MaxUploadSize)
	if err != nil {
		return 0
	}
	return int64(n)
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(cfg *types.Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

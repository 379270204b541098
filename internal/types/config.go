package types

import "time"

// Config represents the complete configuration for Nimbus
type Config struct {
	Logging    LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	API        APIConfig         `mapstructure:"api" yaml:"api"`
	Database   DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Blob       BlobConfig        `mapstructure:"blob" yaml:"blob"`
	Plans      map[string]string `mapstructure:"plans" yaml:"plans" validate:"required"`
	Auth       AuthConfig        `mapstructure:"auth" yaml:"auth"`
	Filesystem FilesystemConfig  `mapstructure:"filesystem" yaml:"filesystem"`
	Metrics    MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	Host          string          `mapstructure:"host" yaml:"host" validate:"required"`
	Port          int             `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	PublicURL     string          `mapstructure:"public_url" yaml:"public_url" validate:"omitempty,url"`
	CORSOrigins   []string        `mapstructure:"cors_origins" yaml:"cors_origins"`
	MaxUploadSize string          `mapstructure:"max_upload_size" yaml:"max_upload_size" validate:"required"`
	DownloadTTL   time.Duration   `mapstructure:"download_ttl" yaml:"download_ttl" validate:"gt=0"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig configures the request rate limiter. Zero means unlimited.
type RateLimitConfig struct {
	RequestsPerSecond uint `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             uint `mapstructure:"burst" yaml:"burst"`
}

// DatabaseConfig selects the metadata store
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=duckdb sqlite"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// BlobConfig selects the Blob Gateway backend. Only the section matching
// Type is used.
type BlobConfig struct {
	Type          string         `mapstructure:"type" yaml:"type" validate:"required,oneof=badger s3"`
	SigningSecret string         `mapstructure:"signing_secret" yaml:"signing_secret"`
	Badger        map[string]any `mapstructure:"badger" yaml:"badger,omitempty"`
	S3            map[string]any `mapstructure:"s3" yaml:"s3,omitempty"`
}

// AuthConfig configures the local identity provider
type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl" validate:"gt=0"`
}

// FilesystemConfig tunes hierarchy rules
type FilesystemConfig struct {
	// AncestryCheck rejects moves into a descendant of the moved node
	AncestryCheck bool `mapstructure:"ancestry_check" yaml:"ancestry_check"`
}

// MetricsConfig toggles Prometheus collection
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

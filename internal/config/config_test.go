package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nimbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// TestLoadConfig tests the Load function
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		env         map[string]string
		expectError string
		validate    func(*testing.T, *types.Config)
	}{
		{
			name: "defaults only",
			validate: func(t *testing.T, cfg *types.Config) {
				assert.Equal(t, "duckdb", cfg.Database.Driver)
				assert.Equal(t, "badger", cfg.Blob.Type)
				assert.Equal(t, "http://localhost:8000", cfg.API.PublicURL)
				assert.Equal(t, 60*time.Second, cfg.API.DownloadTTL)
				assert.True(t, cfg.Filesystem.AncestryCheck)
				assert.Equal(t, "20MiB", cfg.Plans["free"])
				assert.True(t, filepath.IsAbs(cfg.Database.Path))
			},
		},
		{
			name: "yaml overrides",
			body: `
logging:
  level: debug
api:
  port: 9000
  public_url: https://files.example.com/
  download_ttl: 2m
database:
  driver: sqlite
  path: ":memory:"
plans:
  pro: 1GiB
filesystem:
  ancestry_check: false
`,
			validate: func(t *testing.T, cfg *types.Config) {
				assert.Equal(t, "DEBUG", cfg.Logging.Level)
				assert.Equal(t, 9000, cfg.API.Port)
				assert.Equal(t, "https://files.example.com", cfg.API.PublicURL)
				assert.Equal(t, 2*time.Minute, cfg.API.DownloadTTL)
				assert.Equal(t, "sqlite", cfg.Database.Driver)
				assert.Equal(t, ":memory:", cfg.Database.Path)
				assert.Equal(t, "1GiB", cfg.Plans["pro"])
				assert.Equal(t, "20MiB", cfg.Plans["free"])
				assert.False(t, cfg.Filesystem.AncestryCheck)
			},
		},
		{
			name: "environment wins over file",
			body: "api:\n  port: 9000\n",
			env: map[string]string{
				"NIMBUS_API_PORT":        "9100",
				"NIMBUS_DATABASE_DRIVER": "sqlite",
			},
			validate: func(t *testing.T, cfg *types.Config) {
				assert.Equal(t, 9100, cfg.API.Port)
				assert.Equal(t, "sqlite", cfg.Database.Driver)
			},
		},
		{
			name:        "invalid driver",
			body:        "database:\n  driver: postgres\n",
			expectError: "config validation failed",
		},
		{
			name:        "invalid plan size",
			body:        "plans:\n  free: lots\n",
			expectError: "plans.free",
		},
		{
			name:        "malformed yaml",
			body:        "api: [port",
			expectError: "failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}

			cfg, err := Load(path)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

// TestValidate tests the Validate function
func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*types.Config)
		expectError string
	}{
		{"default config", func(*types.Config) {}, ""},
		{"bad log level", func(c *types.Config) { c.Logging.Level = "LOUD" }, "Level"},
		{"port out of range", func(c *types.Config) { c.API.Port = 70000 }, "Port"},
		{"bad upload size", func(c *types.Config) { c.API.MaxUploadSize = "huge" }, "api.max_upload_size"},
		{"missing pro plan", func(c *types.Config) { delete(c.Plans, "pro") }, `missing limit for plan "pro"`},
		{"unknown blob type", func(c *types.Config) { c.Blob.Type = "gcs" }, "Type"},
		{"s3 without section", func(c *types.Config) { c.Blob.Type = "s3" }, "s3 section is missing"},
		{"zero session ttl", func(c *types.Config) { c.Auth.SessionTTL = 0 }, "SessionTTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestApplyDefaults(t *testing.T) {
	cfg := types.Config{
		Plans: map[string]string{"pro": "500MiB"},
	}
	ApplyDefaults(&cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 8000, cfg.API.Port)
	assert.Equal(t, "badger", cfg.Blob.Type)
	assert.NotNil(t, cfg.Blob.Badger)
	assert.Equal(t, "500MiB", cfg.Plans["pro"])
	assert.Equal(t, "20MiB", cfg.Plans["free"])
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.NoError(t, Validate(&cfg))
}

func TestPlanLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Plans["team"] = "1GB"

	limits := PlanLimits(&cfg)
	assert.Equal(t, int64(20*1024*1024), limits[types.PlanFree])
	assert.Equal(t, int64(200*1024*1024), limits[types.PlanPro])
	assert.Equal(t, int64(1000*1000*1000), limits[types.Plan("team")])
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(100*1024*1024), MaxUploadBytes(&cfg))

	cfg.API.MaxUploadSize = "garbage"
	assert.Equal(t, int64(0), MaxUploadBytes(&cfg))
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nimbus.yaml")
	cfg := DefaultConfig()
	cfg.API.Port = 8123
	cfg.API.DownloadTTL = 90 * time.Second
	cfg.Database.Driver = "sqlite"

	require.NoError(t, SaveToFile(&cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, loaded.API.Port)
	assert.Equal(t, 90*time.Second, loaded.API.DownloadTTL)
	assert.Equal(t, "sqlite", loaded.Database.Driver)
	assert.Equal(t, cfg.Plans, loaded.Plans)
	assert.Equal(t, "./nimbus-blobs", loaded.Blob.Badger["path"])
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "cli", cfg.Platform)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.NotEmpty(t, cfg.APIKey)
	assert.NotEmpty(t, cfg.KeyringService)
}

func TestDefault_EndpointDerivation(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "https://example.test"

	assert.Equal(t, "https://example.test/auth/v1", cfg.AuthURL())
	assert.Equal(t, "https://example.test/functions/v1/library", cfg.LibraryURL())
	assert.Equal(t, "https://example.test/functions/v1/ingest", cfg.IngestURL())
	assert.Equal(t, "https://example.test/functions/v1/smart-search", cfg.SmartSearchURL())
	assert.Equal(t, "https://example.test/functions/v1/config", cfg.ConfigURL())
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dopo.yaml")
	content := "base_url: https://staging.example.test\nplatform: desktop\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.test", cfg.BaseURL)
	assert.Equal(t, "desktop", cfg.Platform)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().APIKey, cfg.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dopo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [broken"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, true},
		{"trailing slash", func(c *Config) { c.BaseURL = "https://x.test/" }, true},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Host:     "db",
		User:     "stage",
		Password: "s3cr3t",
		DBName:   "stagegate",
		Port:     "5432",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t,
		"host=db user=stage password=s3cr3t dbname=stagegate port=5432 sslmode=disable TimeZone=UTC",
		BuildDSN(testConfig()))
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "postgres://stage:s3cr3t@db:5432/stagegate?sslmode=disable", BuildURL(testConfig()))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT", "DB_SSLMODE", "DB_TIMEZONE"} {
			t.Setenv(key, "")
		}
		cfg := LoadConfigFromEnv()
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, "stagegate", cfg.DBName)
		assert.Equal(t, "5432", cfg.Port)
		assert.Equal(t, "disable", cfg.SSLMode)
		assert.Equal(t, "UTC", cfg.TimeZone)
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "pg.internal")
		t.Setenv("DB_NAME", "gates")
		cfg := LoadConfigFromEnv()
		assert.Equal(t, "pg.internal", cfg.Host)
		assert.Equal(t, "gates", cfg.DBName)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.Host = "" }, "DB_HOST"},
		{"missing name", func(c *Config) { c.DBName = "" }, "DB_NAME"},
		{"missing port", func(c *Config) { c.Port = "" }, "DB_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSanitizeError(t *testing.T) {
	assert.NoError(t, SanitizeError(nil, testConfig()))

	err := SanitizeError(errors.New("dial failed for "+BuildDSN(testConfig())), testConfig())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t")
	assert.Contains(t, err.Error(), "password=***")
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestLoadRetryConfigFromEnv(t *testing.T) {
	t.Setenv("DB_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("DB_RETRY_INITIAL_DELAY", "250ms")
	t.Setenv("DB_RETRY_MAX_DELAY", "")
	t.Setenv("DB_RETRY_MULTIPLIER", "1.5")

	cfg := LoadRetryConfigFromEnv()
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxDelay)
	assert.Equal(t, 1.5, cfg.Multiplier)
	assert.NotEmpty(t, cfg.RetryableErrors)
}

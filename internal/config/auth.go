package config

import "fmt"

// AuthConfig controls how the acting principal is extracted from requests.
type AuthConfig struct {
	// JWTSecret verifies HS256 bearer tokens issued by the identity provider.
	JWTSecret string
	// AllowDevHeaders accepts X-User-Id / X-User-Role without a token.
	// Intended for local development only.
	AllowDevHeaders bool
}

// LoadAuthConfigFromEnv loads auth configuration from environment variables.
func LoadAuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		JWTSecret:       GetEnv("AUTH_JWT_SECRET", ""),
		AllowDevHeaders: GetEnvBool("AUTH_ALLOW_DEV_HEADERS", false),
	}
}

// Validate validates auth configuration.
func (c AuthConfig) Validate() error {
	if c.JWTSecret == "" && !c.AllowDevHeaders {
		return fmt.Errorf("AUTH_JWT_SECRET is required unless AUTH_ALLOW_DEV_HEADERS is enabled")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 16 bytes")
	}
	return nil
}

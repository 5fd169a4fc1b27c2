// Package config loads application configuration from the environment.
package config

import "fmt"

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Auth holds principal extraction configuration.
	Auth AuthConfig
	// Events holds post-commit event dispatch configuration.
	Events EventsConfig
	// Gate holds the gate review rules.
	Gate GateConfig
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string
}

// LoadFromEnv loads all configuration from environment variables. The gate
// rules file named by GATE_POLICY_FILE is read here as well.
func LoadFromEnv() (Config, error) {
	gate, err := LoadGateConfigFromEnv()
	if err != nil {
		return Config{}, fmt.Errorf("gate config load failed: %w", err)
	}
	return Config{
		Server:  LoadServerConfigFromEnv(),
		Logger:  LoadLoggerConfigFromEnv(),
		Auth:    LoadAuthConfigFromEnv(),
		Events:  LoadEventsConfigFromEnv(),
		Gate:    gate,
		GinMode: GetEnv("GIN_MODE", "release"),
	}, nil
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config validation failed: %w", err)
	}
	if err := c.Gate.Validate(); err != nil {
		return fmt.Errorf("gate config validation failed: %w", err)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s (must be: debug, release, test)", c.GinMode)
	}

	return nil
}

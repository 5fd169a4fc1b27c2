package config

import "fmt"

// EventsConfig controls post-commit event delivery.
type EventsConfig struct {
	// Async delivers events from a background worker instead of inline.
	Async bool
	// Buffer is the queue capacity of the async worker.
	Buffer int
	// DeliveryAttempts is how many times a failing delivery is tried.
	DeliveryAttempts int
}

// LoadEventsConfigFromEnv loads event configuration from environment variables.
func LoadEventsConfigFromEnv() EventsConfig {
	return EventsConfig{
		Async:            GetEnvBool("EVENTS_ASYNC", true),
		Buffer:           GetEnvInt("EVENTS_BUFFER", 256),
		DeliveryAttempts: GetEnvInt("EVENTS_DELIVERY_ATTEMPTS", 3),
	}
}

// Validate validates event configuration.
func (c EventsConfig) Validate() error {
	if c.Async && c.Buffer <= 0 {
		return fmt.Errorf("EVENTS_BUFFER must be greater than 0 when EVENTS_ASYNC is enabled")
	}
	if c.DeliveryAttempts <= 0 {
		return fmt.Errorf("EVENTS_DELIVERY_ATTEMPTS must be greater than 0")
	}
	return nil
}

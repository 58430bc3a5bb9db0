package config

import (
	"fmt"
)

// Config represents the unified configuration structure
type Config struct {
	Watcher       WatcherConfig       `json:"watcher" yaml:"watcher"`
	Build         BuildConfig         `json:"build" yaml:"build"`
	WebSocket     WebSocketConfig     `json:"websocket" yaml:"websocket"`
	HotReload     HotReloadConfig     `json:"hot_reload" yaml:"hot_reload"`
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Watcher:       DefaultWatcherConfig(),
		Build:         DefaultBuildConfig(),
		WebSocket:     DefaultWebSocketConfig(),
		HotReload:     DefaultHotReloadConfig(),
		Observability: DefaultObservabilityConfig(),
	}
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config validation failed: %w", err)
	}
	if err := c.Build.Validate(); err != nil {
		return fmt.Errorf("build config validation failed: %w", err)
	}
	if err := c.WebSocket.Validate(); err != nil {
		return fmt.Errorf("websocket config validation failed: %w", err)
	}
	if err := c.HotReload.Validate(); err != nil {
		return fmt.Errorf("hot reload config validation failed: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability config validation failed: %w", err)
	}
	if c.WebSocket.Port == c.Observability.Metrics.Port {
		return fmt.Errorf("websocket.port and observability.metrics.port cannot be the same")
	}
	return nil
}

// WebSocketAddress returns the full websocket listen address
func (c *Config) WebSocketAddress() string {
	return fmt.Sprintf("%s:%s", c.WebSocket.Host, c.WebSocket.Port)
}

// MetricsAddress returns the full metrics server address
func (c *Config) MetricsAddress() string {
	return fmt.Sprintf("%s:%s", c.WebSocket.Host, c.Observability.Metrics.Port)
}

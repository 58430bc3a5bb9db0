package config

import (
	"fmt"
	"strconv"
	"time"
)

// WebSocketConfig contains websocket server configuration
type WebSocketConfig struct {
	Host              string        `json:"host" yaml:"host"`
	Port              string        `json:"port" yaml:"port"`
	MaxConnections    int           `json:"max_connections" yaml:"max_connections"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval" yaml:"heartbeat_interval"`
	ConnectionTimeout time.Duration `json:"connection_timeout" yaml:"connection_timeout"`
	AdmissionRPS      int           `json:"admission_rps" yaml:"admission_rps"`
	AdmissionBurst    int           `json:"admission_burst" yaml:"admission_burst"`
}

// DefaultWebSocketConfig returns default websocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		Host:              "localhost",
		Port:              "35729",
		MaxConnections:    100,
		HeartbeatInterval: 30 * time.Second,
		ConnectionTimeout: 5 * time.Minute,
		AdmissionRPS:      10,
		AdmissionBurst:    20,
	}
}

// Validate validates websocket configuration
func (w *WebSocketConfig) Validate() error {
	if w.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if err := validatePort(w.Port, "port"); err != nil {
		return err
	}
	if w.MaxConnections < 1 {
		return fmt.Errorf("max connections must be at least 1")
	}
	if w.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive")
	}
	if w.ConnectionTimeout <= 0 {
		return fmt.Errorf("connection timeout must be positive")
	}
	if w.AdmissionRPS < 1 {
		return fmt.Errorf("admission rps must be at least 1")
	}
	return nil
}

// validatePort validates a port string
func validatePort(portStr, fieldName string) error {
	if portStr == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s must be a valid port number: %w", fieldName, err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535", fieldName)
	}

	return nil
}
